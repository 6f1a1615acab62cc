package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// net builds a secured network with unknown noise.
func net(bssid string, channel, rssi int) domain.Network {
	obs := domain.Observation{
		BSSID:    bssid,
		SSID:     "net-" + bssid,
		RSSI:     rssi,
		Channel:  channel,
		Security: "WPA2 Personal",
	}
	now := time.Now()
	return domain.NewNetwork(obs.Key(), obs, now, now)
}

func kinds(recs []domain.Recommendation) []domain.RecommendationKind {
	out := make([]domain.RecommendationKind, len(recs))
	for i, r := range recs {
		out[i] = r.Kind
	}
	return out
}

func TestChannelInterference(t *testing.T) {
	e := NewEngine()
	snapshot := []domain.Network{
		net("a", 1, -40), net("b", 1, -50), net("c", 6, -60),
		net("d", 36, -45), net("e", 200, -70),
	}

	maps := e.ChannelInterference(snapshot)
	require.Len(t, maps, 3)
	assert.Equal(t, map[int]int{1: 2, 6: 1}, maps[domain.Band24GHz].ChannelCounts)
	assert.Equal(t, map[int]int{36: 1}, maps[domain.Band5GHz].ChannelCounts)
	assert.Equal(t, map[int]int{200: 1}, maps[domain.Band6GHz].ChannelCounts)

	most, ok := maps[domain.Band24GHz].MostCongestedChannel()
	require.True(t, ok)
	assert.Equal(t, 1, most)
	least, ok := maps[domain.Band24GHz].LeastCongestedChannel()
	require.True(t, ok)
	assert.Equal(t, 6, least)
}

func TestChannelInterference_Empty(t *testing.T) {
	assert.Empty(t, NewEngine().ChannelInterference(nil))
}

func TestBandUtilization_OrderAndTruncation(t *testing.T) {
	e := NewEngine()
	snapshot := []domain.Network{
		net("u", 0, -90),
		net("f1", 36, -41), net("f2", 40, -42),
		net("t1", 1, -50), net("t2", 6, -51),
	}

	reports := e.BandUtilization(snapshot)
	require.Len(t, reports, 3)
	assert.Equal(t, domain.Band24GHz, reports[0].Band)
	assert.Equal(t, domain.Band5GHz, reports[1].Band)
	assert.Equal(t, domain.BandUnknown, reports[2].Band)

	// (-50 + -51) / 2 = -50.5, truncated toward zero
	assert.Equal(t, -50, reports[0].AverageRSSI)
	assert.Equal(t, -41, reports[1].AverageRSSI)
	assert.Equal(t, 2, reports[0].NetworkCount)
	assert.Equal(t, domain.CongestionLow, reports[0].CongestionLevel)
}

func TestBandUtilization_CongestionBuckets(t *testing.T) {
	e := NewEngine()
	build := func(n int) []domain.Network {
		var out []domain.Network
		for i := 0; i < n; i++ {
			out = append(out, net(fmt.Sprintf("n%d", i), 1+i%11, -60))
		}
		return out
	}

	assert.Equal(t, domain.CongestionLow, e.BandUtilization(build(5))[0].CongestionLevel)
	assert.Equal(t, domain.CongestionModerate, e.BandUtilization(build(6))[0].CongestionLevel)
	assert.Equal(t, domain.CongestionModerate, e.BandUtilization(build(10))[0].CongestionLevel)
	assert.Equal(t, domain.CongestionHigh, e.BandUtilization(build(11))[0].CongestionLevel)
}

func TestRecommendations_CriticalsFirst(t *testing.T) {
	e := NewEngine()
	focal := net("focal", 36, -80)
	focal.Noise = -90 // SNR 10
	focal.Security = "Open"

	recs := e.Recommendations(focal, []domain.Network{focal})
	require.Len(t, recs, 2)
	assert.ElementsMatch(t, []domain.RecommendationKind{domain.KindImproveSignal, domain.KindSecurityWarning}, kinds(recs))
	for _, r := range recs {
		assert.Equal(t, domain.PriorityCritical, r.Priority)
	}
	assert.Contains(t, recs[0].Message, "(10 dB)")
}

func TestRecommendations_CriticalsBeforeWarningsAndInfo(t *testing.T) {
	e := NewEngine()
	focal := net("focal", 6, -75)
	focal.Noise = -84 // SNR 9 and noise above -85
	focal.Security = ""

	recs := e.Recommendations(focal, []domain.Network{focal})
	require.NotEmpty(t, recs)

	lastCritical, firstOther := -1, len(recs)
	for i, r := range recs {
		if r.Priority == domain.PriorityCritical {
			lastCritical = i
		} else if i < firstOther {
			firstOther = i
		}
	}
	assert.Less(t, lastCritical, firstOther)
	assert.Contains(t, kinds(recs), domain.KindReduceInterference)
	// Alone on 2.4 GHz with no 5 GHz networks: average 0 < 1 co-channel
	assert.Equal(t, domain.KindSwitchBand, recs[len(recs)-1].Kind)
}

func TestRecommendations_SNRWarningBand(t *testing.T) {
	e := NewEngine()
	focal := net("f", 36, -70)

	focal.Noise = -85 // SNR 15, noise exactly at threshold
	recs := e.Recommendations(focal, []domain.Network{focal})
	require.Len(t, recs, 1)
	assert.Equal(t, domain.KindImproveSignal, recs[0].Kind)
	assert.Equal(t, domain.PriorityWarning, recs[0].Priority)

	focal.Noise = -95 // SNR 25
	assert.Empty(t, e.Recommendations(focal, []domain.Network{focal}))
}

func TestRecommendations_UnknownNoiseSkipsNoiseRules(t *testing.T) {
	e := NewEngine()
	focal := net("f", 36, -40)
	assert.Empty(t, e.Recommendations(focal, []domain.Network{focal}))
}

func TestRecommendations_SwitchChannel(t *testing.T) {
	e := NewEngine()
	var snapshot []domain.Network
	for i := 0; i < 6; i++ {
		snapshot = append(snapshot, net(fmt.Sprintf("c6-%d", i), 6, -50-i))
	}
	snapshot = append(snapshot, net("c1", 1, -70), net("c1b", 1, -71), net("c11", 11, -72))

	recs := e.Recommendations(snapshot[0], snapshot)
	var found *domain.Recommendation
	for i := range recs {
		if recs[i].Kind == domain.KindSwitchChannel {
			found = &recs[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, domain.PriorityWarning, found.Priority)
	assert.Equal(t, "Channel 6 is congested (6 networks). Consider switching to channel 11 (1 networks).", found.Message)
}

func TestRecommendations_ReduceCongestionWhenNoBetterChannel(t *testing.T) {
	e := NewEngine()
	var snapshot []domain.Network
	for i := 0; i < 6; i++ {
		snapshot = append(snapshot, net(fmt.Sprintf("c36-%d", i), 36, -50))
	}
	recs := e.Recommendations(snapshot[0], snapshot)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.KindReduceCongestion, recs[0].Kind)
	assert.Equal(t, domain.PriorityInfo, recs[0].Priority)
	assert.Contains(t, recs[0].Message, "Channel 36 has 6 networks")
}

func TestRecommendations_EqualCountsAreNotStrictlyBetter(t *testing.T) {
	e := NewEngine()
	var snapshot []domain.Network
	for i := 0; i < 6; i++ {
		snapshot = append(snapshot, net(fmt.Sprintf("a%d", i), 36, -50))
		snapshot = append(snapshot, net(fmt.Sprintf("b%d", i), 40, -50))
	}
	recs := e.Recommendations(snapshot[0], snapshot)
	assert.Equal(t, []domain.RecommendationKind{domain.KindReduceCongestion}, kinds(recs))
}

// Six networks on channel 6 plus a 5 GHz peer set averaging two per channel.
func TestRecommendations_CongestedChannelSixScenario(t *testing.T) {
	e := NewEngine()
	var snapshot []domain.Network
	for i := 0; i < 6; i++ {
		snapshot = append(snapshot, net(fmt.Sprintf("ch6-%d", i), 6, -45-i))
	}
	for _, ch := range []int{36, 36, 44, 44} {
		snapshot = append(snapshot, net(fmt.Sprintf("five-%d-%d", ch, len(snapshot)), ch, -60))
	}

	recs := e.Recommendations(snapshot[0], snapshot)
	var congestion *domain.Recommendation
	for i := range recs {
		if recs[i].Kind == domain.KindSwitchChannel || recs[i].Kind == domain.KindReduceCongestion {
			congestion = &recs[i]
		}
	}
	require.NotNil(t, congestion)
	assert.Contains(t, congestion.Message, "6 networks")
	assert.Contains(t, congestion.Message, "Channel 6")

	// 5 GHz average is 4/4 = 1, below channel 6's 6 networks
	assert.Contains(t, kinds(recs), domain.KindSwitchBand)
}

func TestRecommendations_BandSteeringNotWhen5GHzBusier(t *testing.T) {
	e := NewEngine()
	snapshot := []domain.Network{net("two", 1, -50)}
	for i := 0; i < 3; i++ {
		snapshot = append(snapshot, net(fmt.Sprintf("f%d", i), 36, -60))
	}
	// 5 GHz average: 3 networks on channel 36 / 3 five-GHz networks = 1, not < 1
	assert.NotContains(t, kinds(e.Recommendations(snapshot[0], snapshot)), domain.KindSwitchBand)
}

func TestRecommendations_SecurityDescriptor(t *testing.T) {
	e := NewEngine()
	n := net("s", 36, -40)

	for _, sec := range []string{"", "Open", "Open (OWE transition)"} {
		n.Security = sec
		assert.Contains(t, kinds(e.Recommendations(n, []domain.Network{n})), domain.KindSecurityWarning, sec)
	}
	n.Security = "WPA3 Personal"
	assert.Empty(t, e.Recommendations(n, []domain.Network{n}))
}

func TestRecommendations_DoesNotMutateSnapshot(t *testing.T) {
	e := NewEngine()
	snapshot := []domain.Network{net("b", 1, -80), net("a", 1, -40)}
	before := append([]domain.Network(nil), snapshot...)

	e.TopRecommendations(snapshot)
	e.Recommendations(snapshot[0], snapshot)
	assert.Equal(t, before, snapshot)
}

func TestTopRecommendations_DedupAndCap(t *testing.T) {
	e := NewEngine()
	var snapshot []domain.Network
	for i := 0; i < 8; i++ {
		n := net(fmt.Sprintf("open-%d", i), 1, -40-i)
		n.Security = "Open"
		snapshot = append(snapshot, n)
	}

	recs := e.TopRecommendations(snapshot)
	assert.LessOrEqual(t, len(recs), 5)

	seen := map[string]bool{}
	for _, r := range recs {
		k := string(r.Kind) + "|" + r.Message
		assert.False(t, seen[k], "duplicate %s", k)
		seen[k] = true
	}
	assert.Equal(t, domain.KindSecurityWarning, recs[0].Kind)
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, recs[i-1].Priority, recs[i].Priority)
	}
}

func TestTopRecommendations_OnlyStrongestFive(t *testing.T) {
	e := NewEngine()
	var snapshot []domain.Network
	for i := 0; i < 5; i++ {
		snapshot = append(snapshot, net(fmt.Sprintf("strong-%d", i), 36+4*i, -40))
	}
	weak := net("weak", 149, -90)
	weak.Security = "Open"
	snapshot = append(snapshot, weak)

	assert.Empty(t, e.TopRecommendations(snapshot))
}

func TestTopRecommendations_Empty(t *testing.T) {
	assert.Empty(t, NewEngine().TopRecommendations(nil))
}
