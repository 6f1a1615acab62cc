package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wbands/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes builds the HTTP route tree.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/networks", s.NetworkHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/networks/{key}", s.NetworkHandler.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/networks/{key}/history", s.NetworkHandler.HandleHistory).Methods(http.MethodGet)
	api.HandleFunc("/networks/{key}/recommendations", s.AnalyticsHandler.HandleNetworkRecommendations).Methods(http.MethodGet)
	api.HandleFunc("/connection", s.NetworkHandler.HandleConnection).Methods(http.MethodGet)
	api.HandleFunc("/status", s.NetworkHandler.HandleStatus).Methods(http.MethodGet)

	api.HandleFunc("/analytics/interference", s.AnalyticsHandler.HandleInterference).Methods(http.MethodGet)
	api.HandleFunc("/analytics/utilization", s.AnalyticsHandler.HandleUtilization).Methods(http.MethodGet)
	api.HandleFunc("/analytics/recommendations", s.AnalyticsHandler.HandleTopRecommendations).Methods(http.MethodGet)

	api.HandleFunc("/report.pdf", s.ReportHandler.HandleGenerateReport).Methods(http.MethodGet)
	api.HandleFunc("/export", s.ExportHandler.HandleExport).Methods(http.MethodGet)

	// Scan control reconfigures hardware: rate limited per client.
	limit := s.ScanControlLimit
	if limit <= 0 {
		limit = 10
	}
	scanLimiter := middleware.NewRateLimiter(limit, time.Minute)
	scan := api.PathPrefix("/scan").Subrouter()
	scan.Use(middleware.RateLimitMiddleware(scanLimiter))
	scan.HandleFunc("/start", s.ScanHandler.HandleStart).Methods(http.MethodPost)
	scan.HandleFunc("/stop", s.ScanHandler.HandleStop).Methods(http.MethodPost)
	scan.HandleFunc("/reset", s.ScanHandler.HandleReset).Methods(http.MethodPost)

	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
