package api

import (
	"errors"
	"net/http"
	"strings"

	service "github.com/inourx99/Englishcompition/internal/app"
	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/ledger"
	"github.com/inourx99/Englishcompition/pkg/logger"
)

// IdempotencyHeader optionally names an award so retries are not counted twice.
const IdempotencyHeader = "Idempotency-Key"

type awardRequest struct {
	Kind        string  `json:"kind"`
	Title       *string `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
}

type awardResponse struct {
	Participant participantResponse `json:"participant"`
	Entry       logEntryResponse    `json:"entry"`
	Project     *projectResponse    `json:"project,omitempty"`
	JustWon     bool                `json:"just_won"`
}

type duplicateResponse struct {
	ackResponse
	Participant participantResponse `json:"participant"`
}

// ActivitiesHandler handles awards and the scoring catalog.
type ActivitiesHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps Dependencies, log logger.Logger) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps, log: log}
}

// HandleAward handles POST /participants/{id}/activities.
func (h *ActivitiesHandler) HandleAward(w http.ResponseWriter, r *http.Request) {
	const op = "api.award_activity"
	var req awardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	kind, err := catalog.Parse(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	in := service.AwardInput{
		ParticipantID:  r.PathValue("id"),
		Kind:           kind,
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
	}
	if req.Title != nil {
		in.Project = &ledger.ProjectInput{Title: *req.Title, Description: req.Description}
	}

	out, err := h.deps.RecordActivity(r.Context(), in)
	switch {
	case errors.Is(err, service.ErrDuplicateRequest):
		writeJSON(w, http.StatusOK, duplicateResponse{
			ackResponse: ackResponse{Status: "duplicate", Duplicate: true},
			Participant: toParticipant(out.Participant),
		})
		return
	case err != nil:
		writeServiceError(r.Context(), w, h.log, op, err)
		return
	}

	resp := awardResponse{
		Participant: toParticipant(out.Participant),
		Entry:       toLogEntry(out.Entry),
		JustWon:     out.JustWon,
	}
	if out.Project != nil {
		pr := toProject(*out.Project)
		resp.Project = &pr
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleCatalog handles GET /activities.
func (h *ActivitiesHandler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog())
}
