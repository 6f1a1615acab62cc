package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
)

// NetworkHandler serves the scanned snapshot, history and connection.
type NetworkHandler struct {
	Scan      ports.ScanService
	Analytics ports.AnalyticsService
}

// NewNetworkHandler creates a new NetworkHandler
func NewNetworkHandler(scan ports.ScanService, analytics ports.AnalyticsService) *NetworkHandler {
	return &NetworkHandler{Scan: scan, Analytics: analytics}
}

func views(networks []domain.Network) []domain.NetworkView {
	out := make([]domain.NetworkView, len(networks))
	for i, n := range networks {
		out[i] = n.View()
	}
	return out
}

// HandleList returns the snapshot, or the cached per-band view with ?band=.
func (h *NetworkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("band")
	if raw == "" {
		writeJSON(w, http.StatusOK, views(h.Scan.Networks()))
		return
	}

	band, ok := domain.ParseBand(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown band: "+raw)
		return
	}
	writeJSON(w, http.StatusOK, views(h.Analytics.NetworksByBand(band)))
}

// HandleGet returns one network by identity key.
func (h *NetworkHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	n, ok := h.Scan.Network(key)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrNetworkNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, n.View())
}

// HandleHistory returns the signal history of a network with a summary.
// Unknown keys yield an empty series, not an error.
func (h *NetworkHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	points := h.Scan.History(key)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":     key,
		"points":  points,
		"summary": domain.SummarizeHistory(key, points),
	})
}

// HandleConnection returns the currently associated network, or null.
func (h *NetworkHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Scan.CurrentConnection(r.Context())
	if err != nil {
		log.Printf("[WEB] Connection query failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNoInterface) || errors.Is(err, domain.ErrPermissionDenied) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	if conn == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, conn.View())
}

// HandleStatus returns the orchestrator state.
func (h *NetworkHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Scan.State())
}
