package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/inourx99/Englishcompition/internal/adapters/kv"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/pkg/logger"
	"github.com/inourx99/Englishcompition/pkg/metrics"
)

// RosterStore keeps the roster in memory and writes the whole of it to the
// backend after every mutation. A failed write rolls the mutation back.
type RosterStore struct {
	mu           sync.RWMutex
	backend      kv.Backend
	key          string
	log          logger.Logger
	newID        func() string
	now          func() time.Time
	participants []model.Participant
	index        map[string]int // id -> position in participants
}

var _ Store = (*RosterStore)(nil)

// NewRosterStore creates an empty store over backend. Call Load to read the persisted roster.
// A nil backend keeps the roster in memory only.
func NewRosterStore(backend kv.Backend, opts ...Option) *RosterStore {
	if backend == nil {
		backend = kv.NewMemory()
	}
	s := &RosterStore{
		backend: backend,
		key:     DefaultKey,
		log:     logger.Nop(),
		newID:   uuid.NewString,
		now:     time.Now,
		index:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeName trims, collapses inner whitespace and applies Unicode NFC.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

// Register appends a new participant. Names are compared after normalization and case-sensitively.
func (s *RosterStore) Register(ctx context.Context, name string, grade model.Grade) (model.Participant, error) {
	name = NormalizeName(name)
	if name == "" {
		metrics.RecordRegistrationRejected("invalid_name")
		return model.Participant{}, ErrInvalidName
	}
	if !grade.Valid() {
		metrics.RecordRegistrationRejected("invalid_grade")
		return model.Participant{}, fmt.Errorf("%w: %q", ErrInvalidGrade, grade)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findByNameLocked(name); ok {
		metrics.RecordRegistrationRejected("duplicate_name")
		return model.Participant{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	p := model.Participant{ID: s.newID(), Name: name, Grade: grade}
	s.participants = append(s.participants, p)
	s.index[p.ID] = len(s.participants) - 1

	if err := s.persistLocked(ctx); err != nil {
		delete(s.index, p.ID)
		s.participants = s.participants[:len(s.participants)-1]
		return model.Participant{}, err
	}

	metrics.RecordRegistration()
	s.publishSizeLocked()
	return p.Clone(), nil
}

// Replace swaps the stored record for id.
func (s *RosterStore) Replace(ctx context.Context, id string, updated model.Participant) error {
	_, err := s.Update(ctx, id, func(model.Participant) (model.Participant, error) {
		return updated, nil
	})
	return err
}

// Update applies fn under the store lock and persists the result.
func (s *RosterStore) Update(ctx context.Context, id string, fn UpdateFunc) (model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Participant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	old := s.participants[i]

	next, err := fn(old.Clone())
	if err != nil {
		return model.Participant{}, err
	}
	if next.ID != id {
		return model.Participant{}, fmt.Errorf("update of %s changed id to %q", id, next.ID)
	}

	s.participants[i] = next.Clone()
	if err := s.persistLocked(ctx); err != nil {
		s.participants[i] = old
		return model.Participant{}, err
	}

	s.publishSizeLocked()
	return next.Clone(), nil
}

// Get returns a copy of the participant with id.
func (s *RosterStore) Get(_ context.Context, id string) (model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Participant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.participants[i].Clone(), nil
}

// FindByName looks a participant up by normalized name.
func (s *RosterStore) FindByName(_ context.Context, name string) (model.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.findByNameLocked(NormalizeName(name))
	if !ok {
		return model.Participant{}, false
	}
	return p.Clone(), true
}

// List returns copies of every participant in registration order.
func (s *RosterStore) List(_ context.Context) []model.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Participant, len(s.participants))
	for i, p := range s.participants {
		out[i] = p.Clone()
	}
	return out
}

// Count returns the number of participants.
func (s *RosterStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

// Load replaces the in-memory roster with the persisted one. A missing,
// unreadable or incompatible payload yields an empty roster; the only error
// returned is the context's.
func (s *RosterStore) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := s.now()

	roster := s.readRoster(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = roster
	s.index = make(map[string]int, len(roster))
	for i, p := range roster {
		s.index[p.ID] = i
	}

	metrics.RecordPersistence("load", float64(s.now().Sub(start).Microseconds())/1000)
	s.publishSizeLocked()
	s.log.Info(ctx, "roster loaded", logger.String("key", s.key), logger.Int("participants", len(roster)))
	return nil
}

// Save writes the whole roster to the backend.
func (s *RosterStore) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *RosterStore) readRoster(ctx context.Context) []model.Participant {
	data, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.discard(ctx, "read_error", err)
		return nil
	}
	if !ok {
		return nil
	}

	roster, repaired, err := DecodeRoster(data)
	if err != nil {
		reason := "incompatible"
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			reason = "malformed"
		}
		s.discard(ctx, reason, err)
		return nil
	}
	for _, id := range repaired {
		s.log.Warn(ctx, "stored total disagreed with log; recomputed", logger.String("participant_id", id))
		metrics.RecordPersistenceError("load", "total_repaired")
	}
	return roster
}

func (s *RosterStore) discard(ctx context.Context, reason string, err error) {
	metrics.RecordPersistenceError("load", reason)
	s.log.Error(ctx, "discarding stored roster",
		logger.String("key", s.key),
		logger.String("reason", reason),
		logger.Error(fmt.Errorf("%w: %w", ErrPersistenceRead, err)),
	)
}

// persistLocked must be called with s.mu held.
func (s *RosterStore) persistLocked(ctx context.Context) error {
	start := s.now()
	data, err := EncodeRoster(s.participants)
	if err != nil {
		metrics.RecordPersistenceError("save", "encode")
		return fmt.Errorf("%w: encode: %w", ErrPersistenceWrite, err)
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		metrics.RecordPersistenceError("save", "write")
		s.log.Error(ctx, "roster write failed", logger.String("key", s.key), logger.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
	}
	metrics.RecordPersistence("save", float64(s.now().Sub(start).Microseconds())/1000)
	return nil
}

func (s *RosterStore) findByNameLocked(name string) (model.Participant, bool) {
	for _, p := range s.participants {
		if p.Name == name {
			return p, true
		}
	}
	return model.Participant{}, false
}

func (s *RosterStore) publishSizeLocked() {
	projects := 0
	for _, p := range s.participants {
		projects += len(p.Projects)
	}
	metrics.UpdateRosterSize(len(s.participants), projects)
}
