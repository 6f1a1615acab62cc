package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWirelessInterface(t *testing.T) {
	tests := []struct {
		name    string
		iface   string
		mac     string
		wantErr error
	}{
		{name: "valid interface", iface: "wlan0", mac: "00:11:22:AA:BB:CC"},
		{name: "invalid name", iface: "invalid!name", mac: "00:11:22:33:44:55", wantErr: ErrInvalidInterfaceName},
		{name: "invalid mac", iface: "wlan0", mac: "invalid-mac", wantErr: ErrInvalidMAC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewWirelessInterface(tt.iface, tt.mac)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, info)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.iface, info.Name)
			assert.Equal(t, "00:11:22:aa:bb:cc", info.MAC)
			assert.False(t, info.Associated())
		})
	}
}

func TestWirelessInterface_Band(t *testing.T) {
	w := WirelessInterface{Name: "wlan0", Channel: 44, SSID: "home"}
	assert.Equal(t, Band5GHz, w.Band())
	assert.True(t, w.Associated())
}
