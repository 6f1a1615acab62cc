package domain

// Band is the frequency band a network operates in.
type Band string

const (
	Band24GHz   Band = "2.4 GHz"
	Band5GHz    Band = "5 GHz"
	Band6GHz    Band = "6 GHz"
	BandUnknown Band = "Unknown"
)

// Bands lists every band in display order.
var Bands = []Band{Band24GHz, Band5GHz, Band6GHz, BandUnknown}

// BandFromChannel classifies a channel number.
// Channels 1-14 are 2.4 GHz, 36-165 are 5 GHz and 166-233 are 6 GHz.
func BandFromChannel(channel int) Band {
	switch {
	case channel >= 1 && channel <= 14:
		return Band24GHz
	case channel >= 36 && channel <= 165:
		return Band5GHz
	case channel >= 166 && channel <= 233:
		return Band6GHz
	default:
		return BandUnknown
	}
}

// SortOrder returns the display position of the band.
func (b Band) SortOrder() int {
	switch b {
	case Band24GHz:
		return 0
	case Band5GHz:
		return 1
	case Band6GHz:
		return 2
	default:
		return 3
	}
}

// ParseBand accepts the display names plus the short forms "2.4", "5", "6".
func ParseBand(s string) (Band, bool) {
	switch s {
	case string(Band24GHz), "2.4", "2.4ghz", "24":
		return Band24GHz, true
	case string(Band5GHz), "5", "5ghz":
		return Band5GHz, true
	case string(Band6GHz), "6", "6ghz":
		return Band6GHz, true
	case string(BandUnknown), "unknown":
		return BandUnknown, true
	}
	return "", false
}

// First channel number of the 6 GHz block.
const sixGHzChannelBase = 166

// ChannelFromFrequency converts a centre frequency in MHz to a channel number.
// Returns 0 for frequencies outside the 2.4/5/6 GHz plans. Native 6 GHz
// numbers reuse 1-233, so each 20 MHz slot from 5955 MHz is numbered
// upwards from 166 instead. That keeps BandFromChannel correct for them.
func ChannelFromFrequency(freq int) int {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq < 2484:
		return (freq - 2407) / 5
	case freq >= 5955 && freq <= 7115:
		return sixGHzChannelBase + (freq-5955)/20
	case freq >= 5000 && freq < 5955:
		return (freq - 5000) / 5
	}
	return 0
}
