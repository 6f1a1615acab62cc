package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ScansTotal counts poll cycles by outcome: success, empty, error, skipped, discarded
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbands",
			Name:      "scans_total",
			Help:      "Total number of scan poll cycles by result",
		},
		[]string{"result"},
	)

	// ScanDuration tracks how long the hardware scan blocks
	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "wbands",
			Name:      "scan_duration_seconds",
			Help:      "Duration of hardware scans",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 4, 8},
		},
	)

	// NetworksVisible is the size of the published snapshot per band
	NetworksVisible = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wbands",
			Name:      "networks_visible",
			Help:      "Number of networks in the current snapshot",
		},
		[]string{"band"},
	)

	// HistorySeries is the number of tracked signal history series
	HistorySeries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wbands",
			Name:      "history_series",
			Help:      "Number of networks with signal history",
		},
	)

	// CacheLookups counts analytics cache hits and misses
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbands",
			Name:      "analytics_cache_total",
			Help:      "Analytics cache lookups by analytic and result",
		},
		[]string{"analytic", "result"},
	)

	// MQTTPublishes counts broker publishes by topic suffix and result
	MQTTPublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbands",
			Name:      "mqtt_publishes_total",
			Help:      "MQTT publishes by topic and result",
		},
		[]string{"topic", "result"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		// Ignore AlreadyRegistered errors so tests can call this repeatedly
		prometheus.DefaultRegisterer.Register(ScansTotal)
		prometheus.DefaultRegisterer.Register(ScanDuration)
		prometheus.DefaultRegisterer.Register(NetworksVisible)
		prometheus.DefaultRegisterer.Register(HistorySeries)
		prometheus.DefaultRegisterer.Register(CacheLookups)
		prometheus.DefaultRegisterer.Register(MQTTPublishes)
	})
}
