package domain

import "time"

// MaxHistoryPoints is the per-network cap (2.5 minutes at 1Hz).
const MaxHistoryPoints = 150

// HistoryPoint is one signal-strength sample for a network.
type HistoryPoint struct {
	Timestamp time.Time `json:"ts"`
	RSSI      int       `json:"rssi"`
	Key       string    `json:"key"`
}

// HistorySummary aggregates a series of history points.
type HistorySummary struct {
	Key     string    `json:"key"`
	Count   int       `json:"count"`
	Min     int       `json:"min"`
	Max     int       `json:"max"`
	Average float64   `json:"avg"`
	Last    int       `json:"last"`
	Since   time.Time `json:"since,omitempty"`
}

// SummarizeHistory computes min/max/average/last over a series.
func SummarizeHistory(key string, points []HistoryPoint) HistorySummary {
	s := HistorySummary{Key: key, Count: len(points)}
	if len(points) == 0 {
		return s
	}
	s.Min, s.Max = points[0].RSSI, points[0].RSSI
	s.Since = points[0].Timestamp
	var total int
	for _, p := range points {
		if p.RSSI < s.Min {
			s.Min = p.RSSI
		}
		if p.RSSI > s.Max {
			s.Max = p.RSSI
		}
		total += p.RSSI
	}
	s.Average = float64(total) / float64(len(points))
	s.Last = points[len(points)-1].RSSI
	return s
}
