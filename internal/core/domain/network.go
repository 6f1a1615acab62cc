package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HiddenNetworkName is shown for networks that do not broadcast an SSID.
const HiddenNetworkName = "Hidden Network"

// Observation is a single raw beacon result as reported by a scan source.
type Observation struct {
	BSSID          string    `json:"bssid,omitempty"`
	ID             string    `json:"id,omitempty"` // Fallback token when no BSSID is reported
	SSID           string    `json:"ssid,omitempty"`
	RSSI           int       `json:"rssi"`
	Channel        int       `json:"channel"`
	ChannelWidth   int       `json:"bw,omitempty"` // MHz
	Security       string    `json:"security"`     // e.g. "WPA2 Personal", "Open"
	CountryCode    string    `json:"country,omitempty"`
	BeaconInterval int       `json:"beacon_interval,omitempty"` // TU
	SupportedRates []float64 `json:"rates,omitempty"`           // Mbps
	Noise          int       `json:"noise"`                     // dBm, 0 = unknown
}

// Key returns the identity key of the observation.
// The same radio seen on two channels yields two keys. Observations without
// a BSSID fall back to their ID, and to a random token when that is empty too.
func (o Observation) Key() string {
	id := strings.ToLower(strings.TrimSpace(o.BSSID))
	if id == "" {
		id = o.ID
	}
	if id == "" {
		id = uuid.New().String()
	}
	return fmt.Sprintf("%s@%d", id, o.Channel)
}

// Network is the canonical view of the latest observation for an identity.
type Network struct {
	Key string `json:"key"`
	Observation
	Band      Band      `json:"band"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// NewNetwork builds a Network from an observation.
func NewNetwork(key string, obs Observation, firstSeen, lastSeen time.Time) Network {
	return Network{
		Key:         key,
		Observation: obs,
		Band:        BandFromChannel(obs.Channel),
		FirstSeen:   firstSeen,
		LastSeen:    lastSeen,
	}
}

// DisplayName returns the SSID or a placeholder for hidden networks.
func (n Network) DisplayName() string {
	if n.SSID != "" {
		return n.SSID
	}
	return HiddenNetworkName
}

// SNR returns the signal-to-noise ratio and whether the noise floor is known.
func (n Network) SNR() (int, bool) {
	if n.Noise == 0 {
		return 0, false
	}
	return n.RSSI - n.Noise, true
}

// IsSecured reports whether the security descriptor names any encryption.
func (n Network) IsSecured() bool {
	return n.Security != "" && !strings.Contains(n.Security, "Open")
}

// VisibilityDuration is how long the identity has been continuously tracked.
func (n Network) VisibilityDuration() time.Duration {
	if n.FirstSeen.IsZero() {
		return 0
	}
	return n.LastSeen.Sub(n.FirstSeen)
}

// SignalQuality buckets the RSSI.
func (n Network) SignalQuality() SignalQuality {
	return SignalQualityFromRSSI(n.RSSI)
}

// ConnectionQuality buckets the SNR.
func (n Network) ConnectionQuality() ConnectionQuality {
	snr, ok := n.SNR()
	if !ok {
		return ConnectionUnknown
	}
	return ConnectionQualityFromSNR(snr)
}

// NoiseImpact buckets the noise floor.
func (n Network) NoiseImpact() NoiseImpact {
	return NoiseImpactFromNoise(n.Noise)
}

// MaxSupportedRate returns the highest advertised rate in Mbps, or 0.
func (n Network) MaxSupportedRate() float64 {
	var max float64
	for _, r := range n.SupportedRates {
		if r > max {
			max = r
		}
	}
	return max
}

// MinSupportedRate returns the lowest advertised rate in Mbps, or 0.
func (n Network) MinSupportedRate() float64 {
	var min float64
	for i, r := range n.SupportedRates {
		if i == 0 || r < min {
			min = r
		}
	}
	return min
}

// SignalQuality classifies received signal strength.
type SignalQuality string

const (
	SignalExcellent SignalQuality = "Excellent"
	SignalGood      SignalQuality = "Good"
	SignalFair      SignalQuality = "Fair"
	SignalPoor      SignalQuality = "Poor"
)

// SignalQualityFromRSSI maps dBm to a quality bucket.
func SignalQualityFromRSSI(rssi int) SignalQuality {
	switch {
	case rssi >= -67:
		return SignalExcellent
	case rssi >= -80:
		return SignalGood
	case rssi >= -95:
		return SignalFair
	default:
		return SignalPoor
	}
}

// ConnectionQuality classifies the signal-to-noise ratio.
type ConnectionQuality string

const (
	ConnectionExcellent ConnectionQuality = "Excellent"
	ConnectionGood      ConnectionQuality = "Good"
	ConnectionFair      ConnectionQuality = "Fair"
	ConnectionPoor      ConnectionQuality = "Poor"
	ConnectionUnknown   ConnectionQuality = "Unknown"
)

// ConnectionQualityFromSNR maps an SNR in dB to a quality bucket.
func ConnectionQualityFromSNR(snr int) ConnectionQuality {
	switch {
	case snr >= 40:
		return ConnectionExcellent
	case snr >= 25:
		return ConnectionGood
	case snr >= 15:
		return ConnectionFair
	default:
		return ConnectionPoor
	}
}

// NoiseImpact classifies how much the noise floor degrades the link.
type NoiseImpact string

const (
	NoiseLow      NoiseImpact = "Low"
	NoiseModerate NoiseImpact = "Moderate"
	NoiseHigh     NoiseImpact = "High"
)

// NoiseImpactFromNoise maps a noise floor in dBm to an impact bucket.
func NoiseImpactFromNoise(noise int) NoiseImpact {
	switch {
	case noise >= -85:
		return NoiseHigh
	case noise >= -90:
		return NoiseModerate
	default:
		return NoiseLow
	}
}

// NetworkView is the JSON projection of a Network with derived fields filled in.
type NetworkView struct {
	Network
	DisplayName       string            `json:"display_name"`
	Vendor            string            `json:"vendor,omitempty"`
	SNR               *int              `json:"snr,omitempty"`
	Secured           bool              `json:"secured"`
	SignalQuality     SignalQuality     `json:"signal_quality"`
	ConnectionQuality ConnectionQuality `json:"connection_quality"`
	NoiseImpact       NoiseImpact       `json:"noise_impact"`
	VisibleForSeconds float64           `json:"visible_for_seconds"`
}

// View projects the network for display.
func (n Network) View() NetworkView {
	v := NetworkView{
		Network:           n,
		DisplayName:       n.DisplayName(),
		Vendor:            LookupVendor(n.BSSID),
		Secured:           n.IsSecured(),
		SignalQuality:     n.SignalQuality(),
		ConnectionQuality: n.ConnectionQuality(),
		NoiseImpact:       n.NoiseImpact(),
		VisibleForSeconds: n.VisibilityDuration().Seconds(),
	}
	if snr, ok := n.SNR(); ok {
		v.SNR = &snr
	}
	return v
}
