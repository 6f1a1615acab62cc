package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/wbands/internal/adapters/web"
	"github.com/lcalzada-xor/wbands/internal/adapters/web/server"
	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testNetwork(bssid, ssid string, rssi, channel int) domain.Network {
	obs := domain.Observation{BSSID: bssid, SSID: ssid, RSSI: rssi, Channel: channel, Security: "WPA2 Personal"}
	return domain.NewNetwork(obs.Key(), obs, testNow.Add(-time.Minute), testNow)
}

// setupServer helper creates a server instance with mocks
func setupServer(t *testing.T) (*server.Server, *web.MockScanService, *web.MockAnalyticsService, *web.MockReportExporter) {
	scan := new(web.MockScanService)
	analytics := new(web.MockAnalyticsService)
	exporter := new(web.MockReportExporter)

	srv := server.NewServer(":0", scan, analytics, exporter)
	return srv, scan, analytics, exporter
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_ListNetworks(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	nets := []domain.Network{
		testNetwork("aa:aa:aa:aa:aa:01", "Home", -45, 6),
		testNetwork("aa:aa:aa:aa:aa:02", "", -70, 36),
	}
	scan.On("Networks").Return(nets)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/networks")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "aa:aa:aa:aa:aa:01@6", got[0]["key"])
	assert.Equal(t, "Home", got[0]["display_name"])
	assert.Equal(t, domain.HiddenNetworkName, got[1]["display_name"])
	assert.Equal(t, string(domain.Band5GHz), got[1]["band"])
}

func TestServer_ListNetworksByBand(t *testing.T) {
	srv, _, analytics, _ := setupServer(t)
	analytics.On("NetworksByBand", domain.Band5GHz).Return([]domain.Network{
		testNetwork("aa:aa:aa:aa:aa:02", "Office", -60, 36),
	})

	rec := do(t, srv.Handler(), http.MethodGet, "/api/networks?band=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Office")
	analytics.AssertExpectations(t)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/networks?band=60")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetNetwork(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	n := testNetwork("aa:aa:aa:aa:aa:01", "Home", -45, 6)
	scan.On("Network", n.Key).Return(n, true)
	scan.On("Network", "missing@1").Return(domain.Network{}, false)

	h := srv.Handler()
	rec := do(t, h, http.MethodGet, "/api/networks/"+n.Key)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ssid":"Home"`)

	rec = do(t, h, http.MethodGet, "/api/networks/missing@1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_NetworkHistory(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	points := []domain.HistoryPoint{
		{Timestamp: testNow.Add(-2 * time.Second), RSSI: -60},
		{Timestamp: testNow, RSSI: -50},
	}
	scan.On("History", "k@6").Return(points)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/networks/k@6/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Key    string                `json:"key"`
		Points []domain.HistoryPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "k@6", body.Key)
	assert.Len(t, body.Points, 2)
}

func TestServer_NetworkRecommendations(t *testing.T) {
	srv, _, analytics, _ := setupServer(t)
	analytics.On("Recommendations", "k@6").Return([]domain.Recommendation{
		{Kind: domain.KindSwitchChannel, Priority: domain.PriorityWarning, Message: "Switch to channel 11"},
	}, nil)
	analytics.On("Recommendations", "gone@1").Return(nil, domain.ErrNetworkNotFound)

	h := srv.Handler()
	rec := do(t, h, http.MethodGet, "/api/networks/k@6/recommendations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"priority":"warning"`)

	rec = do(t, h, http.MethodGet, "/api/networks/gone@1/recommendations")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Connection(t *testing.T) {
	t.Run("associated", func(t *testing.T) {
		srv, scan, _, _ := setupServer(t)
		n := testNetwork("aa:aa:aa:aa:aa:01", "Home", -45, 6)
		scan.On("CurrentConnection", mock.Anything).Return(&n, nil)

		rec := do(t, srv.Handler(), http.MethodGet, "/api/connection")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Home")
	})

	t.Run("not associated", func(t *testing.T) {
		srv, scan, _, _ := setupServer(t)
		scan.On("CurrentConnection", mock.Anything).Return(nil, nil)

		rec := do(t, srv.Handler(), http.MethodGet, "/api/connection")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("no interface", func(t *testing.T) {
		srv, scan, _, _ := setupServer(t)
		scan.On("CurrentConnection", mock.Anything).Return(nil, domain.ErrNoInterface)

		rec := do(t, srv.Handler(), http.MethodGet, "/api/connection")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_Analytics(t *testing.T) {
	srv, _, analytics, _ := setupServer(t)
	analytics.On("ChannelInterference").Return(map[domain.Band]domain.InterferenceMap{
		domain.Band5GHz:  {Band: domain.Band5GHz, ChannelCounts: map[int]int{36: 1}},
		domain.Band24GHz: {Band: domain.Band24GHz, ChannelCounts: map[int]int{1: 2, 6: 3}},
	})
	analytics.On("BandUtilization").Return([]domain.UtilizationReport{
		domain.NewUtilizationReport(domain.Band24GHz, 5, -60),
	})
	analytics.On("TopRecommendations").Return([]domain.Recommendation{})

	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/analytics/interference")
	require.Equal(t, http.StatusOK, rec.Code)
	var maps []struct {
		Band  domain.Band `json:"band"`
		Total int         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &maps))
	require.Len(t, maps, 2)
	assert.Equal(t, domain.Band24GHz, maps[0].Band)
	assert.Equal(t, 5, maps[0].Total)
	assert.Equal(t, domain.Band5GHz, maps[1].Band)

	rec = do(t, h, http.MethodGet, "/api/analytics/utilization")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"congestion":"Low"`)

	rec = do(t, h, http.MethodGet, "/api/analytics/recommendations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestServer_ScanControl(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	scan.On("Start", mock.Anything).Return(nil).Once()
	scan.On("Stop").Return().Once()
	scan.On("State").Return(domain.ScanState{Scanning: true})

	h := srv.Handler()
	rec := do(t, h, http.MethodPost, "/api/scan/start")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scanning":true`)

	rec = do(t, h, http.MethodPost, "/api/scan/stop")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/scan/start")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	scan.AssertExpectations(t)
}

func TestServer_ScanStartWithoutInterface(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	scan.On("Start", mock.Anything).Return(domain.ErrNoInterface)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/scan/start")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no WiFi interface")
}

func TestServer_ScanReset(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	scan.On("Reset").Return(domain.ErrScanRunning).Once()
	scan.On("Reset").Return(nil).Once()
	scan.On("State").Return(domain.ScanState{})

	h := srv.Handler()
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/api/scan/reset").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/scan/reset").Code)
	scan.AssertExpectations(t)
}

func TestServer_ScanControlRateLimited(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	srv.ScanControlLimit = 2
	scan.On("Stop").Return()
	scan.On("State").Return(domain.ScanState{})

	h := srv.Handler()
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/scan/stop").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/scan/stop").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "/api/scan/stop").Code)
	scan.AssertNumberOfCalls(t, "Stop", 2)
}

func TestServer_ReportPDF(t *testing.T) {
	srv, scan, analytics, exporter := setupServer(t)
	srv.ReportHandler.Now = func() time.Time { return testNow }

	nets := []domain.Network{testNetwork("aa:aa:aa:aa:aa:01", "Home", -45, 6)}
	scan.On("Networks").Return(nets)
	scan.On("State").Return(domain.ScanState{InitialScanComplete: true, NetworkCount: 1})
	scan.On("CurrentConnection", mock.Anything).Return(nil, errors.New("iw: link failed"))
	analytics.On("ChannelInterference").Return(map[domain.Band]domain.InterferenceMap{})
	analytics.On("BandUtilization").Return([]domain.UtilizationReport{})
	analytics.On("TopRecommendations").Return([]domain.Recommendation{})
	exporter.On("ExportAnalytics", mock.MatchedBy(func(r *domain.ReportData) bool {
		return r.Stats.TotalNetworks == 1 && r.Connection == nil && r.GeneratedAt.Equal(testNow)
	})).Return([]byte("%PDF-1.3 test"), nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/report.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "wbands_report_20260102-030405.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	exporter.AssertExpectations(t)
}

func TestServer_ReportPDFFailure(t *testing.T) {
	srv, scan, analytics, exporter := setupServer(t)
	scan.On("Networks").Return([]domain.Network{})
	scan.On("State").Return(domain.ScanState{})
	scan.On("CurrentConnection", mock.Anything).Return(nil, nil)
	analytics.On("ChannelInterference").Return(map[domain.Band]domain.InterferenceMap{})
	analytics.On("BandUtilization").Return([]domain.UtilizationReport{})
	analytics.On("TopRecommendations").Return([]domain.Recommendation{})
	exporter.On("ExportAnalytics", mock.Anything).Return(nil, errors.New("font missing"))

	rec := do(t, srv.Handler(), http.MethodGet, "/api/report.pdf")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_Export(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	scan.On("Networks").Return([]domain.Network{testNetwork("aa:aa:aa:aa:aa:01", "Home", -45, 6)})
	scan.On("History", "k@6").Return([]domain.HistoryPoint{{Timestamp: testNow, RSSI: -50}})

	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/export?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Home")

	rec = do(t, h, http.MethodGet, "/api/export?type=history&key=k@6")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "k@6")

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/export?format=xml").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/export?type=history").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/export?type=devices").Code)
}

func TestServer_Metrics(t *testing.T) {
	srv, _, _, _ := setupServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_WebSocketPush(t *testing.T) {
	srv, scan, _, _ := setupServer(t)

	updates := make(chan domain.SnapshotUpdate, 1)
	scan.On("Subscribe").Return((<-chan domain.SnapshotUpdate)(updates), func() {})
	scan.On("Networks").Return([]domain.Network{})
	scan.On("State").Return(domain.ScanState{})

	ctx, cancel := context.WithCancel(context.Background())
	srv.WSManager.Start(ctx)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer func() {
		cancel()
		srv.WSManager.Wait()
	}()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	type message struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	read := func() message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m message
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}

	// Initial snapshot.
	assert.Equal(t, "networks", read().Type)
	assert.Equal(t, "status", read().Type)

	require.Eventually(t, func() bool { return srv.WSManager.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	updates <- domain.SnapshotUpdate{
		Networks: []domain.Network{testNetwork("aa:aa:aa:aa:aa:01", "Home", -45, 6)},
		State:    domain.ScanState{Scanning: true, NetworkCount: 1},
	}
	m := read()
	require.Equal(t, "networks", m.Type)
	assert.Contains(t, string(m.Payload), "Home")
	m = read()
	require.Equal(t, "status", m.Type)
	assert.Contains(t, string(m.Payload), `"network_count":1`)
}

func TestServer_WebSocketRejectsForeignOrigin(t *testing.T) {
	srv, _, _, _ := setupServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_RunShutsDown(t *testing.T) {
	srv, scan, _, _ := setupServer(t)
	srv.Addr = "127.0.0.1:0"
	updates := make(chan domain.SnapshotUpdate)
	scan.On("Subscribe").Return((<-chan domain.SnapshotUpdate)(updates), func() {})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
