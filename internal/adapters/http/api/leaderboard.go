package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/inourx99/Englishcompition/internal/domain/projection"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, limit int) []projection.Standing
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	defaultLimit int
	maxLimit     int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultLimit, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N. A missing limit uses
// the default; larger limits are capped.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	n = min(n, h.maxLimit)
	writeJSON(w, http.StatusOK, h.deps.Leaderboard(r.Context(), n))
}
