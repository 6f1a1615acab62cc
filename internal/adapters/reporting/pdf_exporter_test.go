package reporting

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNetworks(n int) []domain.Network {
	now := time.Now()
	out := make([]domain.Network, 0, n)
	for i := 0; i < n; i++ {
		ch := []int{1, 6, 11, 36, 149, 201}[i%6]
		obs := domain.Observation{
			BSSID:    fmt.Sprintf("00:11:22:33:44:%02x", i),
			SSID:     fmt.Sprintf("Net-%d", i),
			RSSI:     -40 - i,
			Channel:  ch,
			Security: "WPA2 Personal",
			Noise:    -92,
		}
		if i%5 == 0 {
			obs.Security = "Open"
		}
		if i%7 == 0 {
			obs.SSID = "Café"
		}
		out = append(out, domain.NewNetwork(obs.Key(), obs, now, now))
	}
	return out
}

func sampleReport(networks []domain.Network) *domain.ReportData {
	conn := networks[0]
	return &domain.ReportData{
		GeneratedAt: time.Now(),
		Title:       "Test Band Report",
		State:       domain.ScanState{InitialScanComplete: true, LastScan: time.Now(), NetworkCount: len(networks)},
		Connection:  &conn,
		Networks:    networks,
		Interference: map[domain.Band]domain.InterferenceMap{
			domain.Band24GHz: {Band: domain.Band24GHz, ChannelCounts: map[int]int{1: 2, 6: 7, 11: 1}},
			domain.Band5GHz:  {Band: domain.Band5GHz, ChannelCounts: map[int]int{36: 3}},
		},
		Utilization: []domain.UtilizationReport{
			domain.NewUtilizationReport(domain.Band24GHz, 10, -60),
			domain.NewUtilizationReport(domain.Band5GHz, 3, -55),
		},
		Recommendations: []domain.Recommendation{
			{Kind: domain.KindSecurityWarning, Priority: domain.PriorityCritical, Message: "This network is not secured."},
			{Kind: domain.KindSwitchChannel, Priority: domain.PriorityWarning, Message: "Channel 6 is congested (7 networks). Consider switching to channel 11 (1 networks)."},
		},
		Stats: domain.NewReportStats(networks),
	}
}

func TestPDFExporter_ExportAnalytics(t *testing.T) {
	exporter := NewPDFExporter()

	data, err := exporter.ExportAnalytics(sampleReport(sampleNetworks(12)))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "output should be a PDF document")
	assert.Greater(t, len(data), 1000)
}

func TestPDFExporter_LargeSnapshotPaginates(t *testing.T) {
	data, err := NewPDFExporter().ExportAnalytics(sampleReport(sampleNetworks(120)))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFExporter_EmptyReport(t *testing.T) {
	data, err := NewPDFExporter().ExportAnalytics(&domain.ReportData{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFExporter_NilReport(t *testing.T) {
	_, err := NewPDFExporter().ExportAnalytics(nil)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
