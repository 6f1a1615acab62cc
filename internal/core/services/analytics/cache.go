package analytics

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
	"github.com/lcalzada-xor/wbands/internal/telemetry"
)

// Analyzer is the set of pure analytics the cache fronts. *Engine implements it.
type Analyzer interface {
	ChannelInterference(snapshot []domain.Network) map[domain.Band]domain.InterferenceMap
	BandUtilization(snapshot []domain.Network) []domain.UtilizationReport
	Recommendations(focal domain.Network, snapshot []domain.Network) []domain.Recommendation
	TopRecommendations(snapshot []domain.Network) []domain.Recommendation
}

// TopologyHash hashes the key-ordered (key, channel, band) tuples of a snapshot.
// RSSI, noise and timestamps are deliberately left out so that signal jitter
// does not count as a change.
func TopologyHash(snapshot []domain.Network) uint64 {
	idx := make([]int, len(snapshot))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return snapshot[idx[a]].Key < snapshot[idx[b]].Key })

	d := xxhash.New()
	var buf [8]byte
	for _, i := range idx {
		n := snapshot[i]
		_, _ = d.WriteString(n.Key)
		_, _ = d.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(n.Channel)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(string(n.Band))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// slot caches one analytic alongside the topology hash it was computed for.
type slot[T any] struct {
	mu    sync.Mutex
	valid bool
	hash  uint64
	value T
}

// get returns the cached value when hash matches, otherwise recomputes it.
func (s *slot[T]) get(name string, hash uint64, compute func() T) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.hash == hash {
		telemetry.CacheLookups.WithLabelValues(name, "hit").Inc()
		return s.value
	}
	telemetry.CacheLookups.WithLabelValues(name, "miss").Inc()
	s.value = compute()
	s.hash = hash
	s.valid = true
	return s.value
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.valid = false
}

// Cache fronts an Analyzer and recomputes an analytic only when the topology
// of the snapshot changed since that analytic was last computed. Each analytic
// has its own slot, so asking for one never forces the others.
type Cache struct {
	source   ports.NetworkSnapshot
	analyzer Analyzer

	interference slot[map[domain.Band]domain.InterferenceMap]
	utilization  slot[[]domain.UtilizationReport]
	top          slot[[]domain.Recommendation]

	mu       sync.Mutex
	perNet   map[string]*slot[[]domain.Recommendation]
	perBand  map[domain.Band]*slot[[]domain.Network]
	lastHash uint64
}

// NewCache creates a cache reading snapshots from source.
func NewCache(source ports.NetworkSnapshot, analyzer Analyzer) *Cache {
	if analyzer == nil {
		analyzer = NewEngine()
	}
	return &Cache{
		source:   source,
		analyzer: analyzer,
		perNet:   make(map[string]*slot[[]domain.Recommendation]),
		perBand:  make(map[domain.Band]*slot[[]domain.Network]),
	}
}

// current loads the snapshot and its hash. Per-network slots for keys that
// left the snapshot are dropped when the topology changes.
func (c *Cache) current() ([]domain.Network, uint64) {
	snapshot := c.source.Networks()
	hash := TopologyHash(snapshot)

	c.mu.Lock()
	if hash != c.lastHash {
		present := make(map[string]struct{}, len(snapshot))
		for _, n := range snapshot {
			present[n.Key] = struct{}{}
		}
		for key := range c.perNet {
			if _, ok := present[key]; !ok {
				delete(c.perNet, key)
			}
		}
		c.lastHash = hash
	}
	c.mu.Unlock()

	return snapshot, hash
}

// ChannelInterference returns the per-band channel occupancy.
func (c *Cache) ChannelInterference() map[domain.Band]domain.InterferenceMap {
	snapshot, hash := c.current()
	return c.interference.get("interference", hash, func() map[domain.Band]domain.InterferenceMap {
		return c.analyzer.ChannelInterference(snapshot)
	})
}

// BandUtilization returns the per-band utilization reports.
func (c *Cache) BandUtilization() []domain.UtilizationReport {
	snapshot, hash := c.current()
	return c.utilization.get("utilization", hash, func() []domain.UtilizationReport {
		return c.analyzer.BandUtilization(snapshot)
	})
}

// TopRecommendations returns at most five recommendations across the strongest networks.
func (c *Cache) TopRecommendations() []domain.Recommendation {
	snapshot, hash := c.current()
	return c.top.get("top_recommendations", hash, func() []domain.Recommendation {
		return c.analyzer.TopRecommendations(snapshot)
	})
}

// Recommendations returns the recommendations for one visible network.
func (c *Cache) Recommendations(key string) ([]domain.Recommendation, error) {
	snapshot, hash := c.current()

	var focal *domain.Network
	for i := range snapshot {
		if snapshot[i].Key == key {
			focal = &snapshot[i]
			break
		}
	}
	if focal == nil {
		return nil, domain.ErrNetworkNotFound
	}

	c.mu.Lock()
	s, ok := c.perNet[key]
	if !ok {
		s = &slot[[]domain.Recommendation]{}
		c.perNet[key] = s
	}
	c.mu.Unlock()

	return s.get("recommendations", hash, func() []domain.Recommendation {
		return c.analyzer.Recommendations(*focal, snapshot)
	}), nil
}

// NetworksByBand returns the networks of one band, strongest first as of the
// last topology change.
func (c *Cache) NetworksByBand(band domain.Band) []domain.Network {
	snapshot, hash := c.current()

	c.mu.Lock()
	s, ok := c.perBand[band]
	if !ok {
		s = &slot[[]domain.Network]{}
		c.perBand[band] = s
	}
	c.mu.Unlock()

	return s.get("band_view", hash, func() []domain.Network {
		networks := domain.FilterByBand(snapshot, band)
		domain.SortBySignal(networks)
		return networks
	})
}

// Invalidate drops every cached value.
func (c *Cache) Invalidate() {
	c.interference.reset()
	c.utilization.reset()
	c.top.reset()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.perNet = make(map[string]*slot[[]domain.Recommendation])
	c.perBand = make(map[domain.Band]*slot[[]domain.Network])
}
