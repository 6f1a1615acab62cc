package scansource

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

// Common SSIDs for realistic mock data
var commonSSIDs = []string{
	"HomeNetwork", "NETGEAR-5G", "Starbucks WiFi", "TP-Link_2.4GHz",
	"Linksys", "ATT-WiFi", "Xfinity", "Google Fiber",
	"Office-Network", "Guest-WiFi", "MyWiFi", "Home-2.4G",
	"DIRECT-Printer", "AndroidAP", "CoffeeShop_Free", "Apartment_5G",
}

// Vendor OUI prefixes (first 3 bytes of MAC)
var vendorPrefixes = []string{
	"00:17:f2", "00:12:fb", "00:1e:bd", "50:c7:bf", "a0:63:91",
	"00:14:bf", "f4:f5:d8", "fc:a6:67", "34:ce:00", "00:1f:c6",
}

var securityTypes = []string{"WPA2 Personal", "WPA3 Personal", "WPA2/WPA3 Personal", "WPA2 Enterprise", "WEP", "Open"}

var (
	channels24GHz = []int{1, 6, 11, 1, 6, 11, 3, 9}
	channels5GHz  = []int{36, 40, 44, 48, 52, 100, 149, 153, 157, 161}
	channels6GHz  = []int{169, 173, 185, 201, 217}
)

// Mock scenarios.
const (
	ScenarioBasic   = "basic"
	ScenarioCrowded = "crowded"
)

// mockAP is one simulated access point.
type mockAP struct {
	obs      domain.Observation
	baseRSSI int
}

// MockBackend simulates a radio environment. The same seed yields the same
// sequence of scans.
type MockBackend struct {
	mu        sync.Mutex
	rand      *rand.Rand
	aps       []*mockAP
	connected int // index into aps, -1 when not associated
}

// NewMockBackend builds a scenario ("basic" or "crowded") from seed.
func NewMockBackend(scenario string, seed int64) *MockBackend {
	m := &MockBackend{rand: rand.New(rand.NewSource(seed)), connected: -1}

	numAPs := 8
	if scenario == ScenarioCrowded {
		numAPs = 24
	}
	for i := 0; i < numAPs; i++ {
		m.generateAP()
	}
	if scenario == ScenarioCrowded {
		// Pile networks on channel 6 so congestion advice fires.
		for i := 0; i < 7; i++ {
			ap := m.generateAP()
			ap.obs.Channel = 6
		}
	}
	if len(m.aps) > 0 {
		m.connected = 0
	}
	return m
}

// generateMAC builds a MAC with a known vendor prefix.
func (m *MockBackend) generateMAC() string {
	prefix := vendorPrefixes[m.rand.Intn(len(vendorPrefixes))]
	return fmt.Sprintf("%s:%02x:%02x:%02x", prefix, m.rand.Intn(256), m.rand.Intn(256), m.rand.Intn(256))
}

func (m *MockBackend) generateAP() *mockAP {
	var channel, width, noise int
	switch r := m.rand.Float32(); {
	case r < 0.5:
		channel, width, noise = channels24GHz[m.rand.Intn(len(channels24GHz))], 20, -88-m.rand.Intn(6)
	case r < 0.85:
		channel, width, noise = channels5GHz[m.rand.Intn(len(channels5GHz))], 80, -92-m.rand.Intn(5)
	default:
		channel, width, noise = channels6GHz[m.rand.Intn(len(channels6GHz))], 160, -95
	}

	ssid := commonSSIDs[m.rand.Intn(len(commonSSIDs))]
	if m.rand.Float32() < 0.1 {
		ssid = ""
	}

	rates := []float64{6, 9, 12, 18, 24, 36, 48, 54}
	if channel <= 14 {
		rates = append([]float64{1, 2, 5.5, 11}, rates...)
	}

	base := -30 - m.rand.Intn(55)
	ap := &mockAP{
		baseRSSI: base,
		obs: domain.Observation{
			BSSID:          m.generateMAC(),
			SSID:           ssid,
			RSSI:           base,
			Channel:        channel,
			ChannelWidth:   width,
			Security:       m.weightedChoice(securityTypes, []float32{0.45, 0.15, 0.15, 0.1, 0.05, 0.1}),
			CountryCode:    "US",
			BeaconInterval: 100,
			SupportedRates: rates,
			Noise:          noise,
		},
	}
	m.aps = append(m.aps, ap)
	return ap
}

func (m *MockBackend) weightedChoice(choices []string, weights []float32) string {
	total := float32(0)
	for _, w := range weights {
		total += w
	}
	r := m.rand.Float32() * total
	cumulative := float32(0)
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[0]
}

// simulateActivity jitters signals and occasionally adds or drops an AP.
func (m *MockBackend) simulateActivity() {
	if m.rand.Float32() < 0.05 {
		m.generateAP()
	}
	if m.rand.Float32() < 0.03 && len(m.aps) > 5 {
		i := 1 + m.rand.Intn(len(m.aps)-1) // never drop the associated AP
		m.aps = append(m.aps[:i], m.aps[i+1:]...)
	}
	for _, ap := range m.aps {
		rssi := ap.baseRSSI + m.rand.Intn(7) - 3
		if rssi > -20 {
			rssi = -20
		}
		if rssi < -95 {
			rssi = -95
		}
		ap.obs.RSSI = rssi
	}
}

// Scan returns the simulated environment. Each AP is occasionally heard twice
// at different strengths, as real drivers report.
func (m *MockBackend) Scan(ctx context.Context) ([]domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.simulateActivity()
	out := make([]domain.Observation, 0, len(m.aps)+2)
	for _, ap := range m.aps {
		out = append(out, ap.obs)
		if m.rand.Float32() < 0.1 {
			echo := ap.obs
			if echo.RSSI -= 5; echo.RSSI < -95 {
				echo.RSSI = -95
			}
			out = append(out, echo)
		}
	}
	return out, nil
}

// Connection returns the first AP as the associated network.
func (m *MockBackend) Connection(ctx context.Context) (*domain.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected < 0 || m.connected >= len(m.aps) {
		return nil, nil
	}
	obs := m.aps[m.connected].obs
	return &obs, nil
}

// Available is always true.
func (m *MockBackend) Available(ctx context.Context) bool {
	return true
}
