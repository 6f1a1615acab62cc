package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
)

// ScanHandler starts and stops the scan loop.
type ScanHandler struct {
	Scan ports.ScanService
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scan ports.ScanService) *ScanHandler {
	return &ScanHandler{Scan: scan}
}

// HandleStart starts polling. Idempotent.
func (h *ScanHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.Scan.Start(r.Context()); err != nil {
		log.Printf("[WEB] Scan start failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNoInterface) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Scan.State())
}

// HandleReset clears the snapshot and history. Scanning must be stopped first.
func (h *ScanHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.Scan.Reset(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrScanRunning) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Scan.State())
}

// HandleStop stops polling. Idempotent.
func (h *ScanHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.Scan.Stop()
	writeJSON(w, http.StatusOK, h.Scan.State())
}
