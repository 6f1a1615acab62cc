// Package export writes snapshots and signal history as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

// ExportJSON writes networks as a JSON array of display views.
func ExportJSON(w io.Writer, networks []domain.Network) error {
	views := make([]domain.NetworkView, len(networks))
	for i, n := range networks {
		views[i] = n.View()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(views)
}

// ExportCSV writes networks as CSV with headers
func ExportCSV(w io.Writer, networks []domain.Network) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := []string{
		"Key", "BSSID", "SSID", "Band", "Channel", "ChannelWidth",
		"RSSI", "Noise", "SNR", "SignalQuality", "Security", "Country",
		"BeaconInterval", "MinRate", "MaxRate", "FirstSeen", "LastSeen",
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, n := range networks {
		snr := ""
		if v, ok := n.SNR(); ok {
			snr = fmt.Sprintf("%d", v)
		}
		row := []string{
			n.Key,
			n.BSSID,
			n.SSID,
			string(n.Band),
			fmt.Sprintf("%d", n.Channel),
			fmt.Sprintf("%d", n.ChannelWidth),
			fmt.Sprintf("%d", n.RSSI),
			fmt.Sprintf("%d", n.Noise),
			snr,
			string(n.SignalQuality()),
			n.Security,
			n.CountryCode,
			fmt.Sprintf("%d", n.BeaconInterval),
			fmt.Sprintf("%g", n.MinSupportedRate()),
			fmt.Sprintf("%g", n.MaxSupportedRate()),
			n.FirstSeen.Format(time.RFC3339),
			n.LastSeen.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

// ExportHistoryJSON writes a history series with its summary.
func ExportHistoryJSON(w io.Writer, key string, points []domain.HistoryPoint) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Summary domain.HistorySummary `json:"summary"`
		Points  []domain.HistoryPoint `json:"points"`
	}{domain.SummarizeHistory(key, points), points})
}

// ExportHistoryCSV writes one row per history point.
func ExportHistoryCSV(w io.Writer, points []domain.HistoryPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Key", "Timestamp", "RSSI"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{p.Key, p.Timestamp.Format(time.RFC3339Nano), fmt.Sprintf("%d", p.RSSI)}); err != nil {
			return err
		}
	}
	return writer.Error()
}

// Filename builds a download name like wbands_networks_20260101-120000.csv.
func Filename(kind, format string, at time.Time) string {
	return fmt.Sprintf("wbands_%s_%s.%s", kind, at.Format("20060102-150405"), strings.ToLower(format))
}
