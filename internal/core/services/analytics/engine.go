// Package analytics derives channel, band and recommendation views from a
// network snapshot and caches them against topology changes.
package analytics

import (
	"fmt"
	"sort"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

const (
	// snrCritical and snrWarning are the SNR thresholds in dB.
	snrCritical = 15
	snrWarning  = 25
	// noiseThreshold is the noise floor (dBm) above which interference is reported.
	noiseThreshold = -85
	// congestedPeers is the co-channel count above which a channel is congested.
	congestedPeers = 5
	// topNetworks is how many of the strongest networks feed TopRecommendations.
	topNetworks = 5
	// maxTopRecommendations caps the TopRecommendations result.
	maxTopRecommendations = 5
)

// Engine derives analytics from a network snapshot. It holds no state and
// never mutates its inputs.
type Engine struct {
	rules []rule
}

// rule inspects one focal network against the whole snapshot.
type rule func(e *Engine, focal domain.Network, snapshot []domain.Network) *domain.Recommendation

// NewEngine creates an engine with the default rule set.
func NewEngine() *Engine {
	return &Engine{
		rules: []rule{
			snrRule,
			noiseRule,
			congestionRule,
			bandSteeringRule,
			securityRule,
		},
	}
}

// ChannelInterference counts networks per channel for each band present.
func (e *Engine) ChannelInterference(snapshot []domain.Network) map[domain.Band]domain.InterferenceMap {
	result := make(map[domain.Band]domain.InterferenceMap)
	for band, networks := range domain.GroupByBand(snapshot) {
		counts := make(map[int]int)
		for _, n := range networks {
			counts[n.Channel]++
		}
		result[band] = domain.InterferenceMap{Band: band, ChannelCounts: counts}
	}
	return result
}

// BandUtilization reports count, mean RSSI and congestion for each band present,
// in display order.
func (e *Engine) BandUtilization(snapshot []domain.Network) []domain.UtilizationReport {
	grouped := domain.GroupByBand(snapshot)
	reports := make([]domain.UtilizationReport, 0, len(grouped))
	for band, networks := range grouped {
		total := 0
		for _, n := range networks {
			total += n.RSSI
		}
		// Go integer division truncates toward zero.
		reports = append(reports, domain.NewUtilizationReport(band, len(networks), total/len(networks)))
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Band.SortOrder() < reports[j].Band.SortOrder()
	})
	return reports
}

// Recommendations evaluates every rule for the focal network and returns the
// results ordered by priority.
func (e *Engine) Recommendations(focal domain.Network, snapshot []domain.Network) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(e.rules))
	for _, r := range e.rules {
		if rec := r(e, focal, snapshot); rec != nil {
			recs = append(recs, *rec)
		}
	}
	domain.SortRecommendations(recs)
	return recs
}

// TopRecommendations merges the recommendations of the strongest networks,
// dropping duplicate (kind, message) pairs, and keeps the first five by priority.
func (e *Engine) TopRecommendations(snapshot []domain.Network) []domain.Recommendation {
	strongest := make([]domain.Network, len(snapshot))
	copy(strongest, snapshot)
	domain.SortBySignal(strongest)
	if len(strongest) > topNetworks {
		strongest = strongest[:topNetworks]
	}

	type dedupKey struct {
		kind    domain.RecommendationKind
		message string
	}
	seen := make(map[dedupKey]struct{})
	unique := make([]domain.Recommendation, 0)

	for _, n := range strongest {
		for _, rec := range e.Recommendations(n, snapshot) {
			k := dedupKey{rec.Kind, rec.Message}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			unique = append(unique, rec)
		}
	}

	domain.SortRecommendations(unique)
	if len(unique) > maxTopRecommendations {
		unique = unique[:maxTopRecommendations]
	}
	return unique
}

// coChannelCount counts networks sharing the focal network's band and channel,
// the focal network included.
func coChannelCount(focal domain.Network, snapshot []domain.Network) int {
	count := 0
	for _, n := range snapshot {
		if n.Channel == focal.Channel && n.Band == focal.Band {
			count++
		}
	}
	return count
}

func snrRule(_ *Engine, focal domain.Network, _ []domain.Network) *domain.Recommendation {
	snr, ok := focal.SNR()
	if !ok {
		return nil
	}
	switch {
	case snr < snrCritical:
		return &domain.Recommendation{
			Kind:     domain.KindImproveSignal,
			Priority: domain.PriorityCritical,
			Message:  fmt.Sprintf("Signal-to-noise ratio is poor (%d dB). Move closer to the router or remove obstacles.", snr),
		}
	case snr < snrWarning:
		return &domain.Recommendation{
			Kind:     domain.KindImproveSignal,
			Priority: domain.PriorityWarning,
			Message:  fmt.Sprintf("Signal-to-noise ratio is fair (%d dB). Consider moving closer for better performance.", snr),
		}
	}
	return nil
}

func noiseRule(_ *Engine, focal domain.Network, _ []domain.Network) *domain.Recommendation {
	// A zero noise value means no sample was taken. It is numerically above
	// noiseThreshold but must not be read as a noisy channel.
	if focal.Noise == 0 || focal.Noise <= noiseThreshold {
		return nil
	}
	return &domain.Recommendation{
		Kind:     domain.KindReduceInterference,
		Priority: domain.PriorityWarning,
		Message:  fmt.Sprintf("High noise interference detected (%d dBm). Other devices may be causing interference.", focal.Noise),
	}
}

func congestionRule(e *Engine, focal domain.Network, snapshot []domain.Network) *domain.Recommendation {
	peers := coChannelCount(focal, snapshot)
	if peers <= congestedPeers {
		return nil
	}

	if bandMap, ok := e.ChannelInterference(snapshot)[focal.Band]; ok {
		if least, found := bandMap.LeastCongestedChannel(); found && bandMap.ChannelCounts[least] < peers {
			return &domain.Recommendation{
				Kind:     domain.KindSwitchChannel,
				Priority: domain.PriorityWarning,
				Message: fmt.Sprintf("Channel %d is congested (%d networks). Consider switching to channel %d (%d networks).",
					focal.Channel, peers, least, bandMap.ChannelCounts[least]),
			}
		}
	}

	return &domain.Recommendation{
		Kind:     domain.KindReduceCongestion,
		Priority: domain.PriorityInfo,
		Message:  fmt.Sprintf("Channel %d has %d networks. This may cause slower speeds during peak usage.", focal.Channel, peers),
	}
}

// bandSteeringRule compares the focal 2.4 GHz channel against the average
// occupancy of channels in use by 5 GHz networks: networks on any of those
// channels divided by the number of 5 GHz networks.
func bandSteeringRule(_ *Engine, focal domain.Network, snapshot []domain.Network) *domain.Recommendation {
	if focal.Band != domain.Band24GHz {
		return nil
	}

	fiveChannels := make(map[int]struct{})
	fiveCount := 0
	for _, n := range snapshot {
		if n.Band == domain.Band5GHz {
			fiveChannels[n.Channel] = struct{}{}
			fiveCount++
		}
	}

	avg := 0
	if fiveCount > 0 {
		onFiveChannels := 0
		for _, n := range snapshot {
			if _, ok := fiveChannels[n.Channel]; ok {
				onFiveChannels++
			}
		}
		avg = onFiveChannels / fiveCount
	}

	if avg >= coChannelCount(focal, snapshot) {
		return nil
	}
	return &domain.Recommendation{
		Kind:     domain.KindSwitchBand,
		Priority: domain.PriorityInfo,
		Message:  "5 GHz band has less congestion and offers faster speeds. Check if your router supports dual-band.",
	}
}

func securityRule(_ *Engine, focal domain.Network, _ []domain.Network) *domain.Recommendation {
	if focal.IsSecured() {
		return nil
	}
	return &domain.Recommendation{
		Kind:     domain.KindSecurityWarning,
		Priority: domain.PriorityCritical,
		Message:  "This network is not secured. Your data may be visible to others. Avoid accessing sensitive information.",
	}
}
