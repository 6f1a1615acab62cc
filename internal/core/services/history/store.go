// Package history keeps bounded per-network signal-strength series.
package history

import (
	"sync"
	"time"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

// Store holds one FIFO-bounded series per identity key.
// A single writer records; readers may query concurrently.
type Store struct {
	mu     sync.RWMutex
	series map[string][]domain.HistoryPoint
	max    int
}

// NewStore creates a store capped at max points per key.
// A non-positive max falls back to domain.MaxHistoryPoints.
func NewStore(max int) *Store {
	if max <= 0 {
		max = domain.MaxHistoryPoints
	}
	return &Store{
		series: make(map[string][]domain.HistoryPoint),
		max:    max,
	}
}

// Record appends a point and drops the oldest ones beyond the cap.
func (s *Store) Record(key string, rssi int, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := append(s.series[key], domain.HistoryPoint{
		Timestamp: ts,
		RSSI:      rssi,
		Key:       key,
	})
	if over := len(points) - s.max; over > 0 {
		// Copy down instead of reslicing so the backing array does not grow forever.
		n := copy(points, points[over:])
		points = points[:n]
	}
	s.series[key] = points
}

// Points returns a chronological copy of the series, empty for unknown keys.
func (s *Store) Points(key string) []domain.HistoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.series[key]
	out := make([]domain.HistoryPoint, len(points))
	copy(out, points)
	return out
}

// Retain drops every series whose key is not in active.
func (s *Store) Retain(active map[string]struct{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.series {
		if _, ok := active[key]; !ok {
			delete(s.series, key)
			removed++
		}
	}
	return removed
}

// Clear drops all series.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string][]domain.HistoryPoint)
}

// Len returns the number of tracked series.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series)
}
