package domain

import (
	"encoding/json"
	"sort"
)

// CongestionLevel buckets how crowded a band or channel is.
type CongestionLevel string

const (
	CongestionLow      CongestionLevel = "Low"
	CongestionModerate CongestionLevel = "Moderate"
	CongestionHigh     CongestionLevel = "High"
)

// ChannelCount is one entry of an InterferenceMap in channel order.
type ChannelCount struct {
	Channel int `json:"channel"`
	Count   int `json:"count"`
}

// InterferenceMap counts visible networks per channel within one band.
type InterferenceMap struct {
	Band          Band        `json:"band"`
	ChannelCounts map[int]int `json:"channel_counts"`
}

// SortedChannels returns the counts ordered by channel number.
func (m InterferenceMap) SortedChannels() []ChannelCount {
	out := make([]ChannelCount, 0, len(m.ChannelCounts))
	for ch, n := range m.ChannelCounts {
		out = append(out, ChannelCount{Channel: ch, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

// MostCongestedChannel returns the busiest channel. Ties go to the lower channel.
func (m InterferenceMap) MostCongestedChannel() (int, bool) {
	best, found := 0, false
	for _, c := range m.SortedChannels() {
		if !found || c.Count > m.ChannelCounts[best] {
			best, found = c.Channel, true
		}
	}
	return best, found
}

// LeastCongestedChannel returns the quietest channel. Ties go to the lower channel.
func (m InterferenceMap) LeastCongestedChannel() (int, bool) {
	best, found := 0, false
	for _, c := range m.SortedChannels() {
		if !found || c.Count < m.ChannelCounts[best] {
			best, found = c.Channel, true
		}
	}
	return best, found
}

// TotalNetworks sums every channel count.
func (m InterferenceMap) TotalNetworks() int {
	total := 0
	for _, n := range m.ChannelCounts {
		total += n
	}
	return total
}

// AverageNetworksPerChannel is the mean occupancy over occupied channels.
func (m InterferenceMap) AverageNetworksPerChannel() float64 {
	if len(m.ChannelCounts) == 0 {
		return 0
	}
	return float64(m.TotalNetworks()) / float64(len(m.ChannelCounts))
}

// CongestionLevel classifies a single channel: 0-2 low, 3-5 moderate, 6+ high.
func (m InterferenceMap) CongestionLevel(channel int) CongestionLevel {
	switch n := m.ChannelCounts[channel]; {
	case n <= 2:
		return CongestionLow
	case n <= 5:
		return CongestionModerate
	default:
		return CongestionHigh
	}
}

// MarshalJSON adds the derived channel list for consumers.
func (m InterferenceMap) MarshalJSON() ([]byte, error) {
	type wire struct {
		Band     Band           `json:"band"`
		Channels []ChannelCount `json:"channels"`
		Total    int            `json:"total"`
		Average  float64        `json:"average_per_channel"`
	}
	return json.Marshal(wire{
		Band:     m.Band,
		Channels: m.SortedChannels(),
		Total:    m.TotalNetworks(),
		Average:  m.AverageNetworksPerChannel(),
	})
}

// UtilizationReport summarises one band.
type UtilizationReport struct {
	Band            Band            `json:"band"`
	NetworkCount    int             `json:"network_count"`
	AverageRSSI     int             `json:"average_rssi"`
	CongestionLevel CongestionLevel `json:"congestion"`
}

// NewUtilizationReport buckets the band by count: 0-5 low, 6-10 moderate, 11+ high.
func NewUtilizationReport(band Band, count, avgRSSI int) UtilizationReport {
	level := CongestionHigh
	switch {
	case count <= 5:
		level = CongestionLow
	case count <= 10:
		level = CongestionModerate
	}
	return UtilizationReport{
		Band:            band,
		NetworkCount:    count,
		AverageRSSI:     avgRSSI,
		CongestionLevel: level,
	}
}

// RecommendationKind names the action a recommendation suggests.
type RecommendationKind string

const (
	KindSwitchChannel      RecommendationKind = "switchChannel"
	KindMoveCloser         RecommendationKind = "moveCloser"
	KindReduceCongestion   RecommendationKind = "reduceCongestion"
	KindSwitchBand         RecommendationKind = "switchBand"
	KindImproveSignal      RecommendationKind = "improveSignal"
	KindReduceInterference RecommendationKind = "reduceInterference"
	KindSecurityWarning    RecommendationKind = "securityWarning"
)

// Priority orders recommendations; lower values come first.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityWarning
	PriorityInfo
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityWarning:
		return "warning"
	case PriorityInfo:
		return "info"
	}
	return "unknown"
}

// MarshalJSON encodes the priority by name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Recommendation is an actionable suggestion for one network.
type Recommendation struct {
	Kind     RecommendationKind `json:"kind"`
	Priority Priority           `json:"priority"`
	Message  string             `json:"message"`
}

// SortRecommendations orders by priority, keeping insertion order for ties.
func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority < recs[j].Priority
	})
}
