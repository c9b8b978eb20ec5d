// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/inourx99/Englishcompition/internal/domain/catalog"
)

// GoalPoints is the total at which a participant reaches the goal.
const GoalPoints = 100

// LogEntry records one awarded activity. Points are copied from the catalog
// when the entry is created.
type LogEntry struct {
	ID        string
	Kind      catalog.Kind
	Points    int
	CreatedAt time.Time
}

// Project is a submitted project artifact. It always has a matching PROJECT log entry.
type Project struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
}

// Participant is the ledger record of one student.
// Log and Projects are ordered newest first.
type Participant struct {
	ID          string
	Name        string
	Grade       Grade
	TotalPoints int
	GoalReached bool
	Log         []LogEntry
	Projects    []Project
}

// Clone returns a deep copy of p.
func (p Participant) Clone() Participant {
	out := p
	if p.Log != nil {
		out.Log = append([]LogEntry(nil), p.Log...)
	}
	if p.Projects != nil {
		out.Projects = append([]Project(nil), p.Projects...)
	}
	return out
}

// LogTotal sums the points of every log entry.
func (p Participant) LogTotal() int {
	total := 0
	for _, e := range p.Log {
		total += e.Points
	}
	return total
}
