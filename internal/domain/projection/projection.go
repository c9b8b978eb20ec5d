// Package projection derives read-only views from a roster snapshot.
// Every function is pure and leaves its input order untouched.
package projection

import (
	"slices"
	"strings"
	"time"

	"github.com/inourx99/Englishcompition/internal/domain/model"
)

// DefaultLimit is the leaderboard size used when no positive limit is given.
const DefaultLimit = 10

// Standing is one leaderboard row.
type Standing struct {
	Position      int         `json:"position"`
	ParticipantID string      `json:"participant_id"`
	Name          string      `json:"name"`
	Grade         model.Grade `json:"grade"`
	TotalPoints   int         `json:"total_points"`
	GoalReached   bool        `json:"goal_reached"`
}

// GalleryItem is a project annotated with its owner.
type GalleryItem struct {
	ProjectID     string      `json:"project_id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	ParticipantID string      `json:"participant_id"`
	Name          string      `json:"name"`
	Grade         model.Grade `json:"grade"`
}

// Query filters participants for the administrative search.
type Query struct {
	// Name matches as a case-insensitive substring. Empty matches everyone.
	Name string
	// Grade matches exactly. Empty matches every grade.
	Grade model.Grade
}

// Rank returns the top limit participants by descending total.
// Ties keep roster order.
func Rank(roster []model.Participant, limit int) []Standing {
	if limit <= 0 {
		limit = DefaultLimit
	}
	sorted := byTotalDesc(roster)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]Standing, len(sorted))
	for i, p := range sorted {
		out[i] = Standing{
			Position:      i + 1,
			ParticipantID: p.ID,
			Name:          p.Name,
			Grade:         p.Grade,
			TotalPoints:   p.TotalPoints,
			GoalReached:   p.GoalReached,
		}
	}
	return out
}

// AllProjects flattens every participant's projects, newest first.
// Projects created at the same instant keep roster order.
func AllProjects(roster []model.Participant) []GalleryItem {
	out := []GalleryItem{}
	for _, p := range roster {
		for _, pr := range p.Projects {
			out = append(out, GalleryItem{
				ProjectID:     pr.ID,
				Title:         pr.Title,
				Description:   pr.Description,
				CreatedAt:     pr.CreatedAt,
				ParticipantID: p.ID,
				Name:          p.Name,
				Grade:         p.Grade,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b GalleryItem) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Search returns the participants matching q ordered by descending total.
func Search(roster []model.Participant, q Query) []model.Participant {
	needle := strings.ToLower(strings.TrimSpace(q.Name))
	matched := make([]model.Participant, 0, len(roster))
	for _, p := range roster {
		if q.Grade != "" && p.Grade != q.Grade {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		matched = append(matched, p)
	}
	return byTotalDesc(matched)
}

func byTotalDesc(roster []model.Participant) []model.Participant {
	sorted := slices.Clone(roster)
	slices.SortStableFunc(sorted, func(a, b model.Participant) int {
		return b.TotalPoints - a.TotalPoints
	})
	return sorted
}
