// Package ledger applies point-earning activities to participant records.
//
// The engine is pure apart from its clock and id generator: it never mutates
// its input and returns a new record for every awarded activity.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/model"
)

// ProjectInput carries the artifact submitted with a PROJECT activity.
type ProjectInput struct {
	Title       string
	Description string
}

// Outcome is the result of recording one activity.
type Outcome struct {
	Participant model.Participant
	Entry       model.LogEntry
	Project     *model.Project
	// JustWon is true only for the update that first reached the goal.
	JustWon bool
}

// Engine records activities against participants.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// New creates an Engine with the wall clock and random UUIDs.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordActivity awards kind to p. project must be given for PROJECT and only for PROJECT.
func (e *Engine) RecordActivity(p model.Participant, kind catalog.Kind, project *ProjectInput) (Outcome, error) {
	if p.ID == "" {
		return Outcome{}, fmt.Errorf("%w: participant id is empty", ErrInvalidActivityInput)
	}
	entry, ok := catalog.Lookup(kind)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidActivityInput, kind)
	}
	if kind == catalog.Project && project == nil {
		return Outcome{}, fmt.Errorf("%w: project details are required", ErrInvalidActivityInput)
	}
	if kind != catalog.Project && project != nil {
		return Outcome{}, fmt.Errorf("%w: project details given for %s", ErrInvalidActivityInput, kind)
	}

	var artifact *model.Project
	if project != nil {
		title := strings.TrimSpace(project.Title)
		if title == "" {
			return Outcome{}, fmt.Errorf("%w: project title is empty", ErrInvalidActivityInput)
		}
		artifact = &model.Project{
			Title:       title,
			Description: strings.TrimSpace(project.Description),
		}
	}

	now := e.now()
	logEntry := model.LogEntry{
		ID:        e.newID(),
		Kind:      kind,
		Points:    entry.Points,
		CreatedAt: now,
	}

	next := p.Clone()
	if artifact != nil {
		artifact.ID = e.newID()
		artifact.CreatedAt = now
		next.Projects = append([]model.Project{*artifact}, p.Projects...)
	}
	next.Log = append([]model.LogEntry{logEntry}, p.Log...)
	next.TotalPoints = p.TotalPoints + entry.Points

	var justWon bool
	next.GoalReached, justWon = EvaluateGoal(p.TotalPoints, next.TotalPoints, p.GoalReached)

	return Outcome{
		Participant: next,
		Entry:       logEntry,
		Project:     artifact,
		JustWon:     justWon,
	}, nil
}

// EvaluateGoal applies the goal rule. The flag is monotonic and justWon is
// set only on the update that first reaches model.GoalPoints. The old total
// is accepted for symmetry; the old flag already carries the history.
func EvaluateGoal(_, newTotal int, oldFlag bool) (flag, justWon bool) {
	justWon = newTotal >= model.GoalPoints && !oldFlag
	return oldFlag || justWon, justWon
}
