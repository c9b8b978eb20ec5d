package rosterctl

import (
	"io"
	"time"

	"github.com/inourx99/Englishcompition/internal/config"
	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/model"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options holds configuration for one CLI invocation
type Options struct {
	Settings *config.Config // Storage and leaderboard settings
	Format   string         // Output format, json or yaml
	Out      io.Writer      // Destination for command output
	Verbose  bool           // Enable info logging
}

type entryView struct {
	ID        string       `json:"id" yaml:"id"`
	Kind      catalog.Kind `json:"kind" yaml:"kind"`
	Points    int          `json:"points" yaml:"points"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
}

type projectView struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

type participantView struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Grade       model.Grade   `json:"grade" yaml:"grade"`
	TotalPoints int           `json:"total_points" yaml:"total_points"`
	GoalReached bool          `json:"goal_reached" yaml:"goal_reached"`
	Log         []entryView   `json:"log" yaml:"log"`
	Projects    []projectView `json:"projects" yaml:"projects"`
}

type awardView struct {
	Participant participantView `json:"participant" yaml:"participant"`
	Entry       entryView       `json:"entry" yaml:"entry"`
	Project     *projectView    `json:"project,omitempty" yaml:"project,omitempty"`
	JustWon     bool            `json:"just_won" yaml:"just_won"`
}

type standingView struct {
	Position      int         `json:"position" yaml:"position"`
	ParticipantID string      `json:"participant_id" yaml:"participant_id"`
	Name          string      `json:"name" yaml:"name"`
	Grade         model.Grade `json:"grade" yaml:"grade"`
	TotalPoints   int         `json:"total_points" yaml:"total_points"`
	GoalReached   bool        `json:"goal_reached" yaml:"goal_reached"`
}

type galleryView struct {
	ProjectID     string      `json:"project_id" yaml:"project_id"`
	Title         string      `json:"title" yaml:"title"`
	Description   string      `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt     time.Time   `json:"created_at" yaml:"created_at"`
	ParticipantID string      `json:"participant_id" yaml:"participant_id"`
	Name          string      `json:"name" yaml:"name"`
	Grade         model.Grade `json:"grade" yaml:"grade"`
}

type catalogView struct {
	Kind   catalog.Kind `json:"kind" yaml:"kind"`
	Points int          `json:"points" yaml:"points"`
	Label  string       `json:"label" yaml:"label"`
}

// exportView is the document written by the export command.
type exportView struct {
	ExportedAt   time.Time         `json:"exported_at" yaml:"exported_at"`
	StorageKey   string            `json:"storage_key" yaml:"storage_key"`
	Participants []participantView `json:"participants" yaml:"participants"`
}

func toEntry(e model.LogEntry) entryView {
	return entryView{ID: e.ID, Kind: e.Kind, Points: e.Points, CreatedAt: e.CreatedAt}
}

func toProject(p model.Project) projectView {
	return projectView{ID: p.ID, Title: p.Title, Description: p.Description, CreatedAt: p.CreatedAt}
}

func toParticipant(p model.Participant) participantView { //nolint:gocritic // hugeParam: read-only conversion
	out := participantView{
		ID:          p.ID,
		Name:        p.Name,
		Grade:       p.Grade,
		TotalPoints: p.TotalPoints,
		GoalReached: p.GoalReached,
		Log:         make([]entryView, len(p.Log)),
		Projects:    make([]projectView, len(p.Projects)),
	}
	for i, e := range p.Log {
		out.Log[i] = toEntry(e)
	}
	for i, pr := range p.Projects {
		out.Projects[i] = toProject(pr)
	}
	return out
}
