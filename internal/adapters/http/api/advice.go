package api

import (
	"net/http"

	"github.com/inourx99/Englishcompition/internal/domain/advice"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/pkg/logger"
)

type ideasRequest struct {
	Grade string `json:"grade"`
}

// AdviceHandler queues text generation and serves the resulting slots.
type AdviceHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewAdviceHandler creates a new advice handler.
func NewAdviceHandler(deps Dependencies, log logger.Logger) *AdviceHandler {
	return &AdviceHandler{deps: deps, log: log}
}

// HandleRequestEncouragement handles POST /participants/{id}/encouragement.
func (h *AdviceHandler) HandleRequestEncouragement(w http.ResponseWriter, r *http.Request) {
	const op = "api.request_encouragement"
	slot, err := h.deps.RequestEncouragement(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, slot)
}

// HandleGetEncouragement handles GET /participants/{id}/encouragement.
func (h *AdviceHandler) HandleGetEncouragement(w http.ResponseWriter, r *http.Request) {
	h.writeSlot(w, "api.get_encouragement", advice.EncouragementKey(r.PathValue("id")))
}

// HandleRequestIdeas handles POST /ideas.
func (h *AdviceHandler) HandleRequestIdeas(w http.ResponseWriter, r *http.Request) {
	const op = "api.request_ideas"
	var req ideasRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	grade, err := model.ParseGrade(req.Grade)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	slot, err := h.deps.RequestIdeas(r.Context(), grade)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, slot)
}

// HandleGetIdeas handles GET /ideas?grade=.
func (h *AdviceHandler) HandleGetIdeas(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ideas"
	grade, err := model.ParseGrade(r.URL.Query().Get("grade"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.writeSlot(w, op, advice.IdeasKey(grade))
}

func (h *AdviceHandler) writeSlot(w http.ResponseWriter, op, key string) {
	slot, ok := h.deps.Advice(key)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, errNoAdvice))
		return
	}
	writeJSON(w, http.StatusOK, slot)
}
