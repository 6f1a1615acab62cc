package domain

import (
	"sort"
	"time"
)

// ReportData aggregates everything the analytics report shows.
type ReportData struct {
	GeneratedAt     time.Time
	Title           string
	State           ScanState
	Connection      *Network
	Networks        []Network // strongest first
	Interference    map[Band]InterferenceMap
	Utilization     []UtilizationReport
	Recommendations []Recommendation
	Stats           ReportStats
}

// ReportStats holds summary counts for the report header.
type ReportStats struct {
	TotalNetworks     int
	HiddenNetworks    int
	OpenNetworks      int
	SecurityBreakdown map[string]int
	BandCounts        map[Band]int
}

// NewReportStats counts networks by security descriptor and band.
func NewReportStats(networks []Network) ReportStats {
	s := ReportStats{
		TotalNetworks:     len(networks),
		SecurityBreakdown: make(map[string]int),
		BandCounts:        make(map[Band]int),
	}
	for _, n := range networks {
		if n.SSID == "" {
			s.HiddenNetworks++
		}
		if !n.IsSecured() {
			s.OpenNetworks++
		}
		sec := n.Security
		if sec == "" {
			sec = "Open"
		}
		s.SecurityBreakdown[sec]++
		s.BandCounts[n.Band]++
	}
	return s
}

// SecurityLabels returns the breakdown keys, most common first.
func (s ReportStats) SecurityLabels() []string {
	labels := make([]string, 0, len(s.SecurityBreakdown))
	for k := range s.SecurityBreakdown {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := s.SecurityBreakdown[labels[i]], s.SecurityBreakdown[labels[j]]
		if a != b {
			return a > b
		}
		return labels[i] < labels[j]
	})
	return labels
}
