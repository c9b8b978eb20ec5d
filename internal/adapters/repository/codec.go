package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/model"
)

// Stored shape of the roster. Field names and millisecond timestamps match
// the payload written by the browser version of the app.
type participantRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Grade       string          `json:"grade"`
	TotalPoints int             `json:"totalPoints"`
	Logs        []logRecord     `json:"logs"`
	Projects    []projectRecord `json:"projects"`
	HasWon      bool            `json:"hasWon"`
}

type logRecord struct {
	ID           string       `json:"id"`
	ActivityType catalog.Kind `json:"activityType"`
	Timestamp    int64        `json:"timestamp"`
	Points       int          `json:"points"`
}

type projectRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
}

// EncodeRoster serializes participants in roster order.
func EncodeRoster(participants []model.Participant) ([]byte, error) {
	records := make([]participantRecord, len(participants))
	for i, p := range participants {
		rec := participantRecord{
			ID:          p.ID,
			Name:        p.Name,
			Grade:       string(p.Grade),
			TotalPoints: p.TotalPoints,
			Logs:        make([]logRecord, len(p.Log)),
			Projects:    make([]projectRecord, len(p.Projects)),
			HasWon:      p.GoalReached,
		}
		for j, e := range p.Log {
			rec.Logs[j] = logRecord{ID: e.ID, ActivityType: e.Kind, Timestamp: e.CreatedAt.UnixMilli(), Points: e.Points}
		}
		for j, pr := range p.Projects {
			rec.Projects[j] = projectRecord{ID: pr.ID, Title: pr.Title, Description: pr.Description, Timestamp: pr.CreatedAt.UnixMilli()}
		}
		records[i] = rec
	}
	return json.Marshal(records)
}

// DecodeRoster parses a stored roster. It fails on malformed JSON and on records
// that cannot be represented: missing or repeated ids, unknown grades or kinds.
// The second result lists participants whose stored total disagreed with their log;
// their totals are recomputed from the log.
func DecodeRoster(data []byte) ([]model.Participant, []string, error) {
	var records []participantRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrPersistenceRead, err)
	}

	seen := make(map[string]struct{}, len(records))
	participants := make([]model.Participant, 0, len(records))
	var repaired []string
	for i, rec := range records {
		if rec.ID == "" {
			return nil, nil, fmt.Errorf("%w: participant %d has no id", ErrPersistenceRead, i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, nil, fmt.Errorf("%w: participant id %q repeated", ErrPersistenceRead, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		grade := model.Grade(rec.Grade)
		if !grade.Valid() {
			return nil, nil, fmt.Errorf("%w: participant %q has grade %q", ErrPersistenceRead, rec.ID, rec.Grade)
		}

		p := model.Participant{
			ID:          rec.ID,
			Name:        rec.Name,
			Grade:       grade,
			TotalPoints: rec.TotalPoints,
			GoalReached: rec.HasWon,
		}
		if len(rec.Logs) > 0 {
			p.Log = make([]model.LogEntry, len(rec.Logs))
		}
		for j, l := range rec.Logs {
			if !l.ActivityType.Valid() {
				return nil, nil, fmt.Errorf("%w: participant %q log %d has no activity", ErrPersistenceRead, rec.ID, j)
			}
			p.Log[j] = model.LogEntry{ID: l.ID, Kind: l.ActivityType, Points: l.Points, CreatedAt: fromMillis(l.Timestamp)}
		}
		if len(rec.Projects) > 0 {
			p.Projects = make([]model.Project, len(rec.Projects))
		}
		for j, pr := range rec.Projects {
			p.Projects[j] = model.Project{ID: pr.ID, Title: pr.Title, Description: pr.Description, CreatedAt: fromMillis(pr.Timestamp)}
		}

		if sum := p.LogTotal(); sum != p.TotalPoints {
			p.TotalPoints = sum
			repaired = append(repaired, p.ID)
		}
		participants = append(participants, p)
	}
	return participants, repaired, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
