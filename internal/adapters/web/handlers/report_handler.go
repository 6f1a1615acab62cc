package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
	"github.com/lcalzada-xor/wbands/internal/core/services/export"
)

// ReportHandler renders the analytics PDF.
type ReportHandler struct {
	Scan      ports.ScanService
	Analytics ports.AnalyticsService
	Exporter  ports.ReportExporter
	Now       func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(scan ports.ScanService, analytics ports.AnalyticsService, exporter ports.ReportExporter) *ReportHandler {
	return &ReportHandler{Scan: scan, Analytics: analytics, Exporter: exporter, Now: time.Now}
}

// BuildReport gathers the current snapshot and analytics.
func (h *ReportHandler) BuildReport(r *http.Request) *domain.ReportData {
	networks := h.Scan.Networks()
	report := &domain.ReportData{
		GeneratedAt:     h.Now(),
		Title:           "WiFi Band Analysis",
		State:           h.Scan.State(),
		Networks:        networks,
		Interference:    h.Analytics.ChannelInterference(),
		Utilization:     h.Analytics.BandUtilization(),
		Recommendations: h.Analytics.TopRecommendations(),
		Stats:           domain.NewReportStats(networks),
	}
	// The report is still useful without the connection.
	if conn, err := h.Scan.CurrentConnection(r.Context()); err == nil {
		report.Connection = conn
	}
	return report
}

// HandleGenerateReport streams the PDF.
func (h *ReportHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	report := h.BuildReport(r)
	data, err := h.Exporter.ExportAnalytics(report)
	if err != nil {
		log.Printf("[WEB] Report generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename("report", "pdf", report.GeneratedAt))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[WEB] Report write failed: %v", err)
	}
}
