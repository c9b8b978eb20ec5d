// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/inourx99/Englishcompition/internal/adapters/repository"
	service "github.com/inourx99/Englishcompition/internal/app"
	"github.com/inourx99/Englishcompition/internal/domain/advice"
	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/ledger"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/internal/domain/projection"
	"github.com/inourx99/Englishcompition/pkg/logger"
)

const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Register(ctx context.Context, name string, grade model.Grade) (model.Participant, error)
	RecordActivity(ctx context.Context, in service.AwardInput) (ledger.Outcome, error)
	Participant(ctx context.Context, id string) (model.Participant, error)
	Participants(ctx context.Context, q projection.Query) []model.Participant

	Leaderboard(ctx context.Context, limit int) []projection.Standing
	Gallery(ctx context.Context) []projection.GalleryItem
	Catalog() []catalog.Entry

	RequestEncouragement(ctx context.Context, id string) (advice.Slot, error)
	RequestIdeas(ctx context.Context, grade model.Grade) (advice.Slot, error)
	Advice(key string) (advice.Slot, bool)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	participantsHandler *ParticipantsHandler
	activitiesHandler   *ActivitiesHandler
	leaderboardHandler  *LeaderboardHandler
	galleryHandler      *GalleryHandler
	adviceHandler       *AdviceHandler
	gate                *AdminGate
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{
		defaultLimit: projection.DefaultLimit,
		maxLimit:     100,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxLimit < cfg.defaultLimit {
		cfg.maxLimit = cfg.defaultLimit
	}

	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		participantsHandler: NewParticipantsHandler(deps, cfg.log),
		activitiesHandler:   NewActivitiesHandler(deps, cfg.log),
		leaderboardHandler:  NewLeaderboardHandler(deps, cfg.defaultLimit, cfg.maxLimit),
		galleryHandler:      NewGalleryHandler(deps),
		adviceHandler:       NewAdviceHandler(deps, cfg.log),
		gate:                NewAdminGate(cfg.passphrase, cfg.log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	admin := s.gate.Require

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /admin/session", MetricsMiddleware(s.gate.HandleSession, "admin_session"))

	mux.HandleFunc("POST /participants", MetricsMiddleware(s.participantsHandler.HandleRegister, "participants"))
	mux.HandleFunc("GET /participants", MetricsMiddleware(admin(s.participantsHandler.HandleSearch), "participants"))
	mux.HandleFunc("GET /participants/{id}", MetricsMiddleware(s.participantsHandler.HandleGet, "participant"))
	mux.HandleFunc("POST /participants/{id}/activities", MetricsMiddleware(admin(s.activitiesHandler.HandleAward), "activities"))
	mux.HandleFunc("POST /participants/{id}/encouragement", MetricsMiddleware(admin(s.adviceHandler.HandleRequestEncouragement), "encouragement"))
	mux.HandleFunc("GET /participants/{id}/encouragement", MetricsMiddleware(admin(s.adviceHandler.HandleGetEncouragement), "encouragement"))

	mux.HandleFunc("POST /ideas", MetricsMiddleware(s.adviceHandler.HandleRequestIdeas, "ideas"))
	mux.HandleFunc("GET /ideas", MetricsMiddleware(s.adviceHandler.HandleGetIdeas, "ideas"))

	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /gallery", MetricsMiddleware(s.galleryHandler.HandleGetGallery, "gallery"))
	mux.HandleFunc("GET /activities", MetricsMiddleware(s.activitiesHandler.HandleCatalog, "catalog"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeServiceError maps domain and service sentinels to HTTP statuses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, repository.ErrDuplicateName):
		writeError(w, http.StatusConflict, "duplicate_name", Wrap(op, err))
	case errors.Is(err, repository.ErrInvalidName),
		errors.Is(err, repository.ErrInvalidGrade),
		errors.Is(err, model.ErrUnknownGrade),
		errors.Is(err, catalog.ErrUnknownKind),
		errors.Is(err, ledger.ErrInvalidActivityInput):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	case errors.Is(err, repository.ErrPersistenceWrite):
		log.Error(ctx, "request not persisted", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "persistence_error", Wrap(op, err))
	default:
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
