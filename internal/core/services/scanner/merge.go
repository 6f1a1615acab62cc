package scanner

import "github.com/lcalzada-xor/wbands/internal/core/domain"

// keyedObservation pairs an observation with its resolved identity key.
type keyedObservation struct {
	key string
	obs domain.Observation
}

// mergeStrongest folds a scan result into one observation per identity key.
// A later observation replaces an earlier one only on strictly greater RSSI,
// so the outcome does not depend on input order except between equal signals,
// where the first one wins.
func mergeStrongest(observations []domain.Observation) []keyedObservation {
	index := make(map[string]int, len(observations))
	merged := make([]keyedObservation, 0, len(observations))

	for _, obs := range observations {
		key := obs.Key()
		if i, ok := index[key]; ok {
			if obs.RSSI > merged[i].obs.RSSI {
				merged[i].obs = obs
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, keyedObservation{key: key, obs: obs})
	}
	return merged
}
