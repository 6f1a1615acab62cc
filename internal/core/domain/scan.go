package domain

import (
	"sort"
	"time"
)

// ScanState is the observable status of the scan orchestrator.
type ScanState struct {
	Scanning            bool      `json:"scanning"`
	InitialScanComplete bool      `json:"initial_scan_complete"`
	LastError           string    `json:"last_error,omitempty"`
	LastScan            time.Time `json:"last_scan,omitempty"`
	NetworkCount        int       `json:"network_count"`
}

// SortBySignal orders networks strongest first. Equal RSSI falls back to key
// order so repeated calls are stable.
func SortBySignal(networks []Network) {
	sort.Slice(networks, func(i, j int) bool {
		if networks[i].RSSI != networks[j].RSSI {
			return networks[i].RSSI > networks[j].RSSI
		}
		return networks[i].Key < networks[j].Key
	})
}

// FilterByBand returns the networks on the given band, in input order.
func FilterByBand(networks []Network, band Band) []Network {
	out := make([]Network, 0, len(networks))
	for _, n := range networks {
		if n.Band == band {
			out = append(out, n)
		}
	}
	return out
}

// GroupByBand buckets networks per band.
func GroupByBand(networks []Network) map[Band][]Network {
	out := make(map[Band][]Network)
	for _, n := range networks {
		out[n.Band] = append(out[n.Band], n)
	}
	return out
}

// SnapshotUpdate is pushed to subscribers whenever the orchestrator publishes.
type SnapshotUpdate struct {
	Networks []Network `json:"networks"`
	State    ScanState `json:"state"`
}
