package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wbands/internal/adapters/web"
	"github.com/lcalzada-xor/wbands/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr      string
	Scan      ports.ScanService
	Analytics ports.AnalyticsService
	WSManager *web.WSManager

	NetworkHandler   *handlers.NetworkHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	ScanHandler      *handlers.ScanHandler
	ReportHandler    *handlers.ReportHandler
	ExportHandler    *handlers.ExportHandler

	// ScanControlLimit caps start/stop requests per client per minute.
	ScanControlLimit int

	srv *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, scan ports.ScanService, analytics ports.AnalyticsService, exporter ports.ReportExporter, allowedOrigins ...string) *Server {
	return &Server{
		Addr:             addr,
		Scan:             scan,
		Analytics:        analytics,
		WSManager:        web.NewWSManager(scan, allowedOrigins...),
		NetworkHandler:   handlers.NewNetworkHandler(scan, analytics),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analytics),
		ScanHandler:      handlers.NewScanHandler(scan),
		ReportHandler:    handlers.NewReportHandler(scan, analytics, exporter),
		ExportHandler:    handlers.NewExportHandler(scan),
		ScanControlLimit: 10,
	}
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "wbands-server")
}

// Run starts the push hub and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.WSManager.Start(ctx)
	defer s.WSManager.Wait()
	// Runs before Wait: a failed listen must still release the hub.
	defer cancel()

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		log.Println("[WEB] Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WEB] Server shutdown error: %v", err)
		}
	}()

	log.Printf("[WEB] Listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-stopped
	return nil
}
