package web

import (
	"context"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockScanService is a mock of ports.ScanService
type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) Networks() []domain.Network {
	args := m.Called()
	return args.Get(0).([]domain.Network)
}

func (m *MockScanService) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockScanService) Stop() {
	m.Called()
}

func (m *MockScanService) NetworksByBand(band domain.Band) []domain.Network {
	args := m.Called(band)
	return args.Get(0).([]domain.Network)
}

func (m *MockScanService) Network(key string) (domain.Network, bool) {
	args := m.Called(key)
	return args.Get(0).(domain.Network), args.Bool(1)
}

func (m *MockScanService) History(key string) []domain.HistoryPoint {
	args := m.Called(key)
	return args.Get(0).([]domain.HistoryPoint)
}

func (m *MockScanService) CurrentConnection(ctx context.Context) (*domain.Network, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Network), args.Error(1)
}

func (m *MockScanService) State() domain.ScanState {
	args := m.Called()
	return args.Get(0).(domain.ScanState)
}

func (m *MockScanService) Subscribe() (<-chan domain.SnapshotUpdate, func()) {
	args := m.Called()
	return args.Get(0).(<-chan domain.SnapshotUpdate), args.Get(1).(func())
}

func (m *MockScanService) Reset() error {
	args := m.Called()
	return args.Error(0)
}

// MockAnalyticsService is a mock of ports.AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) ChannelInterference() map[domain.Band]domain.InterferenceMap {
	args := m.Called()
	return args.Get(0).(map[domain.Band]domain.InterferenceMap)
}

func (m *MockAnalyticsService) BandUtilization() []domain.UtilizationReport {
	args := m.Called()
	return args.Get(0).([]domain.UtilizationReport)
}

func (m *MockAnalyticsService) TopRecommendations() []domain.Recommendation {
	args := m.Called()
	return args.Get(0).([]domain.Recommendation)
}

func (m *MockAnalyticsService) Recommendations(key string) ([]domain.Recommendation, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Recommendation), args.Error(1)
}

func (m *MockAnalyticsService) NetworksByBand(band domain.Band) []domain.Network {
	args := m.Called(band)
	return args.Get(0).([]domain.Network)
}

// MockReportExporter is a mock of ports.ReportExporter
type MockReportExporter struct {
	mock.Mock
}

func (m *MockReportExporter) ExportAnalytics(report *domain.ReportData) ([]byte, error) {
	args := m.Called(report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
