package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
)

// AnalyticsHandler serves the cached analytics views.
type AnalyticsHandler struct {
	Analytics ports.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: analytics}
}

// HandleInterference returns one interference map per band, in band order.
func (h *AnalyticsHandler) HandleInterference(w http.ResponseWriter, r *http.Request) {
	maps := h.Analytics.ChannelInterference()
	out := make([]domain.InterferenceMap, 0, len(maps))
	for _, b := range domain.Bands {
		if m, ok := maps[b]; ok {
			out = append(out, m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleUtilization returns per-band utilization.
func (h *AnalyticsHandler) HandleUtilization(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Analytics.BandUtilization())
}

// HandleTopRecommendations returns the environment-wide recommendations.
func (h *AnalyticsHandler) HandleTopRecommendations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Analytics.TopRecommendations())
}

// HandleNetworkRecommendations returns recommendations for one network.
func (h *AnalyticsHandler) HandleNetworkRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Analytics.Recommendations(mux.Vars(r)["key"])
	if errors.Is(err, domain.ErrNetworkNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
