package domain

import (
	"errors"
	"strings"
)

// Domain errors for wireless interfaces.
var (
	ErrInvalidInterfaceName = errors.New("invalid interface name")
	ErrInvalidMAC           = errors.New("invalid MAC address")
)

// WirelessInterface describes the adapter a scan source drives.
type WirelessInterface struct {
	Name    string `json:"name"`
	MAC     string `json:"mac"`
	Type    string `json:"type,omitempty"` // managed, monitor, AP...
	Channel int    `json:"channel,omitempty"`
	SSID    string `json:"ssid,omitempty"` // Associated network, if any
}

// NewWirelessInterface validates the name and MAC before building the value.
func NewWirelessInterface(name, mac string) (*WirelessInterface, error) {
	if !IsValidInterface(name) {
		return nil, ErrInvalidInterfaceName
	}
	if !IsValidMAC(mac) {
		return nil, ErrInvalidMAC
	}
	return &WirelessInterface{Name: name, MAC: strings.ToLower(mac)}, nil
}

// Band reports the band of the channel the interface is tuned to.
func (w WirelessInterface) Band() Band {
	return BandFromChannel(w.Channel)
}

// Associated reports whether the interface is connected to a network.
func (w WirelessInterface) Associated() bool {
	return w.SSID != ""
}
