package api

import (
	"net/http"
)

// StatsProvider reports runtime counters of the points service.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats writes the current service stats. The body is never cached.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
