package ports

import (
	"context"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

// ScanSource provides raw beacon observations from the wireless hardware.
type ScanSource interface {
	// Scan performs a hardware scan. Implementations rate-limit physical scans
	// and return an empty slice with a nil error when called too early.
	Scan(ctx context.Context) ([]domain.Observation, error)
	// CurrentConnection returns the associated network, or nil when not associated.
	CurrentConnection(ctx context.Context) (*domain.Observation, error)
	// InterfaceAvailable reports whether scanning hardware is present and enabled.
	InterfaceAvailable(ctx context.Context) bool
}

// NetworkSnapshot exposes the current set of visible networks.
type NetworkSnapshot interface {
	// Networks returns the visible networks, strongest first.
	Networks() []domain.Network
}

// ScanService is the orchestrator surface consumed by adapters.
type ScanService interface {
	NetworkSnapshot
	Start(ctx context.Context) error
	Stop()
	NetworksByBand(band domain.Band) []domain.Network
	Network(key string) (domain.Network, bool)
	History(key string) []domain.HistoryPoint
	CurrentConnection(ctx context.Context) (*domain.Network, error)
	State() domain.ScanState
	Subscribe() (<-chan domain.SnapshotUpdate, func())
	// Reset forgets the snapshot and history. Fails with ErrScanRunning while polling.
	Reset() error
}

// AnalyticsService serves derived views of the current snapshot.
type AnalyticsService interface {
	ChannelInterference() map[domain.Band]domain.InterferenceMap
	BandUtilization() []domain.UtilizationReport
	TopRecommendations() []domain.Recommendation
	Recommendations(key string) ([]domain.Recommendation, error)
	NetworksByBand(band domain.Band) []domain.Network
}
