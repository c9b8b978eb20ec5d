package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/internal/domain/projection"
	"github.com/inourx99/Englishcompition/pkg/logger"
)

type registerRequest struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

type logEntryResponse struct {
	ID        string       `json:"id"`
	Kind      catalog.Kind `json:"kind"`
	Points    int          `json:"points"`
	CreatedAt time.Time    `json:"created_at"`
}

type projectResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type participantResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Grade       model.Grade        `json:"grade"`
	TotalPoints int                `json:"total_points"`
	GoalReached bool               `json:"goal_reached"`
	Log         []logEntryResponse `json:"log"`
	Projects    []projectResponse  `json:"projects"`
}

func toLogEntry(e model.LogEntry) logEntryResponse {
	return logEntryResponse{ID: e.ID, Kind: e.Kind, Points: e.Points, CreatedAt: e.CreatedAt}
}

func toProject(p model.Project) projectResponse {
	return projectResponse{ID: p.ID, Title: p.Title, Description: p.Description, CreatedAt: p.CreatedAt}
}

func toParticipant(p model.Participant) participantResponse { //nolint:gocritic // hugeParam: read-only conversion
	out := participantResponse{
		ID:          p.ID,
		Name:        p.Name,
		Grade:       p.Grade,
		TotalPoints: p.TotalPoints,
		GoalReached: p.GoalReached,
		Log:         make([]logEntryResponse, len(p.Log)),
		Projects:    make([]projectResponse, len(p.Projects)),
	}
	for i, e := range p.Log {
		out.Log[i] = toLogEntry(e)
	}
	for i, pr := range p.Projects {
		out.Projects[i] = toProject(pr)
	}
	return out
}

// ParticipantsHandler handles registration, lookup and search.
type ParticipantsHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewParticipantsHandler creates a new participants handler.
func NewParticipantsHandler(deps Dependencies, log logger.Logger) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps, log: log}
}

// HandleRegister handles POST /participants.
func (h *ParticipantsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_participant"
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	grade, err := model.ParseGrade(req.Grade)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Register(r.Context(), req.Name, grade)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, toParticipant(p))
}

// HandleGet handles GET /participants/{id}.
func (h *ParticipantsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_participant"
	p, err := h.deps.Participant(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipant(p))
}

// HandleSearch handles GET /participants?name=&grade=.
func (h *ParticipantsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_participants"
	q := projection.Query{Name: strings.TrimSpace(r.URL.Query().Get("name"))}
	if g := r.URL.Query().Get("grade"); g != "" {
		grade, err := model.ParseGrade(g)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		q.Grade = grade
	}
	found := h.deps.Participants(r.Context(), q)
	out := make([]participantResponse, len(found))
	for i, p := range found {
		out[i] = toParticipant(p)
	}
	writeJSON(w, http.StatusOK, out)
}
