package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wbands/internal/core/ports"
	"github.com/lcalzada-xor/wbands/internal/core/services/export"
)

// ExportHandler handles data export
type ExportHandler struct {
	Scan ports.ScanService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(scan ports.ScanService) *ExportHandler {
	return &ExportHandler{Scan: scan}
}

// HandleExport writes the snapshot (type=networks) or one history series
// (type=history&key=...) as JSON or CSV.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be json or csv")
		return
	}

	dataType := q.Get("type")
	if dataType == "" {
		dataType = "networks"
	}

	switch dataType {
	case "networks":
		h.setDownload(w, dataType, format)
		var err error
		if format == "csv" {
			err = export.ExportCSV(w, h.Scan.Networks())
		} else {
			err = export.ExportJSON(w, h.Scan.Networks())
		}
		if err != nil {
			log.Printf("[WEB] Export error: %v", err)
		}
	case "history":
		key := q.Get("key")
		if key == "" {
			writeError(w, http.StatusBadRequest, "key is required for history export")
			return
		}
		points := h.Scan.History(key)
		h.setDownload(w, dataType, format)
		var err error
		if format == "csv" {
			err = export.ExportHistoryCSV(w, points)
		} else {
			err = export.ExportHistoryJSON(w, key, points)
		}
		if err != nil {
			log.Printf("[WEB] Export error: %v", err)
		}
	default:
		writeError(w, http.StatusBadRequest, "type must be networks or history")
	}
}

func (h *ExportHandler) setDownload(w http.ResponseWriter, kind, format string) {
	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(kind, format, time.Now()))
}
