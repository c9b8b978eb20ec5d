package repository

import (
	"context"

	"github.com/inourx99/Englishcompition/internal/domain/model"
)

// UpdateFunc computes the replacement for a participant record.
// It receives a private copy and must not change the id.
type UpdateFunc func(current model.Participant) (model.Participant, error)

// Store provides read/write access to the roster.
type Store interface {
	// Register appends a new participant with zero points.
	Register(ctx context.Context, name string, grade model.Grade) (model.Participant, error)
	// Replace swaps the record for id. Returns ErrNotFound if id is unknown.
	Replace(ctx context.Context, id string, updated model.Participant) error
	// Update applies fn to the record for id atomically and returns the stored result.
	Update(ctx context.Context, id string, fn UpdateFunc) (model.Participant, error)

	Get(ctx context.Context, id string) (model.Participant, error)
	FindByName(ctx context.Context, name string) (model.Participant, bool)
	// List returns copies of every participant in registration order.
	List(ctx context.Context) []model.Participant
	Count(ctx context.Context) int

	Load(ctx context.Context) error
	Save(ctx context.Context) error
}
