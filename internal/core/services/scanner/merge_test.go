package scanner

import (
	"testing"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeStrongest(t *testing.T) {
	tests := []struct {
		name     string
		input    []domain.Observation
		wantKeys []string
		wantRSSI []int
	}{
		{
			name:     "empty",
			input:    nil,
			wantKeys: []string{},
			wantRSSI: []int{},
		},
		{
			name:     "stronger replaces",
			input:    []domain.Observation{obs("AA", 1, -70), obs("aa", 1, -40)},
			wantKeys: []string{"aa@1"},
			wantRSSI: []int{-40},
		},
		{
			name:     "weaker ignored",
			input:    []domain.Observation{obs("aa", 1, -40), obs("aa", 1, -70)},
			wantKeys: []string{"aa@1"},
			wantRSSI: []int{-40},
		},
		{
			name:     "first appearance order kept",
			input:    []domain.Observation{obs("b", 6, -80), obs("a", 1, -30), obs("b", 6, -20)},
			wantKeys: []string{"b@6", "a@1"},
			wantRSSI: []int{-20, -30},
		},
		{
			name:     "channel splits identity",
			input:    []domain.Observation{obs("a", 1, -30), obs("a", 36, -30)},
			wantKeys: []string{"a@1", "a@36"},
			wantRSSI: []int{-30, -30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergeStrongest(tt.input)
			keys := make([]string, 0, len(merged))
			rssi := make([]int, 0, len(merged))
			for _, m := range merged {
				keys = append(keys, m.key)
				rssi = append(rssi, m.obs.RSSI)
			}
			assert.Equal(t, tt.wantKeys, keys)
			assert.Equal(t, tt.wantRSSI, rssi)
		})
	}
}

func TestMergeStrongest_EqualSignalKeepsFirst(t *testing.T) {
	first := obs("a", 1, -50)
	first.SSID = "first"
	second := obs("a", 1, -50)
	second.SSID = "second"

	merged := mergeStrongest([]domain.Observation{first, second})
	require.Len(t, merged, 1)
	assert.Equal(t, "first", merged[0].obs.SSID)
}

func TestMergeStrongest_IDFallback(t *testing.T) {
	merged := mergeStrongest([]domain.Observation{
		{ID: "tok-1", Channel: 6, RSSI: -60},
		{ID: "tok-1", Channel: 6, RSSI: -55},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, "tok-1@6", merged[0].key)
	assert.Equal(t, -55, merged[0].obs.RSSI)
}
