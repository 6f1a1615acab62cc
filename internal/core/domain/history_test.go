package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeHistory(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []HistoryPoint{
		{Timestamp: t0, RSSI: -60, Key: "k"},
		{Timestamp: t0.Add(time.Second), RSSI: -40, Key: "k"},
		{Timestamp: t0.Add(2 * time.Second), RSSI: -50, Key: "k"},
	}

	s := SummarizeHistory("k", points)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, -60, s.Min)
	assert.Equal(t, -40, s.Max)
	assert.InDelta(t, -50.0, s.Average, 1e-9)
	assert.Equal(t, -50, s.Last)
	assert.Equal(t, t0, s.Since)
}

func TestSummarizeHistory_Empty(t *testing.T) {
	s := SummarizeHistory("k", nil)
	assert.Equal(t, HistorySummary{Key: "k"}, s)
}
