// Package service ties the roster, the ledger engine and the advice pipeline
// together behind the operations the HTTP API and the CLI need.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inourx99/Englishcompition/internal/adapters/kv"
	"github.com/inourx99/Englishcompition/internal/adapters/mq/queue"
	"github.com/inourx99/Englishcompition/internal/adapters/mq/worker"
	"github.com/inourx99/Englishcompition/internal/adapters/repository"
	"github.com/inourx99/Englishcompition/internal/adapters/textgen"
	"github.com/inourx99/Englishcompition/internal/domain/advice"
	"github.com/inourx99/Englishcompition/internal/domain/catalog"
	"github.com/inourx99/Englishcompition/internal/domain/dedupe"
	"github.com/inourx99/Englishcompition/internal/domain/ledger"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/internal/domain/projection"
	"github.com/inourx99/Englishcompition/pkg/logger"
	"github.com/inourx99/Englishcompition/pkg/metrics"
)

const (
	defaultWorkerCount   = 2
	defaultQueueSize     = 256
	defaultDedupeSize    = 10_000
	defaultAdviceTimeout = 15 * time.Second
	stopTimeout          = 10 * time.Second
)

// AwardInput is one request to record an activity.
type AwardInput struct {
	ParticipantID string
	Kind          catalog.Kind
	Project       *ledger.ProjectInput
	// IdempotencyKey is optional. A repeated key for the same participant is
	// answered with ErrDuplicateRequest and leaves the roster untouched.
	IdempotencyKey string
}

// Service implements the operations of the points ledger.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.RosterStore
	engine  *ledger.Engine
	deduper dedupe.Deduper
	board   *advice.Board
	advisor *textgen.Advisor

	// Awards whose idempotency key is recorded but not yet committed.
	keysMu   sync.Mutex
	inflight map[string]chan struct{}

	// Advice pipeline, created on Start
	adviceQueue *queue.InMemoryQueue
	workerPool  *worker.Pool
	cancel      context.CancelFunc

	// Configuration
	backend          kv.Backend
	storageKey       string
	generator        textgen.Generator
	workerCount      int
	queueSize        int
	dedupeSize       int
	leaderboardLimit int
	adviceTimeout    time.Duration
	now              func() time.Time
	newID            func() string

	started bool
	logger  logger.Logger
}

// New constructs a Service. The roster is empty until Start loads it.
func New(opts ...Option) *Service {
	s := &Service{
		storageKey:       repository.DefaultKey,
		workerCount:      defaultWorkerCount,
		queueSize:        defaultQueueSize,
		dedupeSize:       defaultDedupeSize,
		leaderboardLimit: projection.DefaultLimit,
		adviceTimeout:    defaultAdviceTimeout,
		now:              func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:            uuid.NewString,
		inflight:         make(map[string]chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.backend == nil {
		s.backend = kv.NewMemory()
	}
	s.store = repository.NewRosterStore(s.backend,
		repository.WithKey(s.storageKey),
		repository.WithLogger(s.logger.Named("roster")),
		repository.WithIDGenerator(s.newID),
	)
	s.engine = ledger.New(ledger.WithClock(s.now), ledger.WithIDGenerator(s.newID))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.board = advice.NewBoard(s.now)
	s.advisor = textgen.NewAdvisor(s.generator, s.logger.Named("advisor"))

	return s
}

// Start loads the roster and starts the advice workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting points service...")

	if err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	s.adviceQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = worker.NewPool(s.workerCount, s.adviceQueue, s.advisor, s.board,
		worker.WithTimeout(s.adviceTimeout),
		worker.WithLogger(s.logger.Named("worker")),
	)

	// Workers outlive the start context so Stop can drain them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "points service started",
		logger.Int("participants", s.store.Count(ctx)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop drains pending advice requests and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping points service...")

	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.workerPool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "advice workers did not drain", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "points service stopped")
}

// Register adds a participant with zero points.
func (s *Service) Register(ctx context.Context, name string, grade model.Grade) (model.Participant, error) {
	p, err := s.store.Register(ctx, name, grade)
	if err != nil {
		return model.Participant{}, err
	}
	s.logger.Info(ctx, "participant registered",
		logger.String("participant_id", p.ID),
		logger.String("grade", string(p.Grade)),
	)
	return p, nil
}

// RecordActivity applies one award atomically. On ErrDuplicateRequest the
// outcome carries the current record and nothing else.
func (s *Service) RecordActivity(ctx context.Context, in AwardInput) (ledger.Outcome, error) {
	var key string
	if in.IdempotencyKey != "" {
		key = in.ParticipantID + ":" + in.IdempotencyKey
		seen, err := s.claimKey(ctx, key)
		if err != nil {
			return ledger.Outcome{}, err
		}
		if seen {
			metrics.RecordDuplicateAward()
			p, err := s.store.Get(ctx, in.ParticipantID)
			if err != nil {
				return ledger.Outcome{}, err
			}
			s.logger.Debug(ctx, "duplicate award skipped",
				logger.String("participant_id", in.ParticipantID),
				logger.String("idempotency_key", in.IdempotencyKey),
			)
			return ledger.Outcome{Participant: p}, ErrDuplicateRequest
		}
	}

	var out ledger.Outcome
	_, err := s.store.Update(ctx, in.ParticipantID, func(cur model.Participant) (model.Participant, error) {
		o, err := s.engine.RecordActivity(cur, in.Kind, in.Project)
		if err != nil {
			return model.Participant{}, err
		}
		out = o
		return o.Participant, nil
	})
	if key != "" {
		s.releaseKey(ctx, key, err == nil)
	}
	if err != nil {
		return ledger.Outcome{}, err
	}

	metrics.RecordActivity(in.Kind.String(), out.Entry.Points)
	if out.JustWon {
		metrics.RecordGoalReached()
		s.logger.Info(ctx, "participant reached the goal",
			logger.String("participant_id", out.Participant.ID),
			logger.Int("total_points", out.Participant.TotalPoints),
		)
	}
	return out, nil
}

// claimKey reports whether key belongs to a committed award. When it does not,
// the caller owns the key until releaseKey. A key still in flight is waited on,
// so a duplicate is only ever answered for an award that was saved.
func (s *Service) claimKey(ctx context.Context, key string) (bool, error) {
	for {
		s.keysMu.Lock()
		pending, busy := s.inflight[key]
		if !busy {
			seen := s.deduper.SeenAndRecord(ctx, key)
			if !seen {
				s.inflight[key] = make(chan struct{})
			}
			s.keysMu.Unlock()
			return seen, nil
		}
		s.keysMu.Unlock()

		select {
		case <-pending:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// releaseKey ends ownership of key. A failed award forgets the key so a
// waiting or later retry applies it.
func (s *Service) releaseKey(ctx context.Context, key string, committed bool) {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()

	if !committed {
		s.deduper.Unrecord(ctx, key)
	}
	if pending, ok := s.inflight[key]; ok {
		delete(s.inflight, key)
		close(pending)
	}
}

// Participant returns the full record for id.
func (s *Service) Participant(ctx context.Context, id string) (model.Participant, error) {
	return s.store.Get(ctx, id)
}

// Participants searches the roster by name substring and grade.
func (s *Service) Participants(ctx context.Context, q projection.Query) []model.Participant {
	return projection.Search(s.store.List(ctx), q)
}

// Leaderboard returns the top standings. A non-positive limit uses the configured default.
func (s *Service) Leaderboard(ctx context.Context, limit int) []projection.Standing {
	if limit <= 0 {
		limit = s.leaderboardLimit
	}
	return projection.Rank(s.store.List(ctx), limit)
}

// Gallery returns every project, newest first.
func (s *Service) Gallery(ctx context.Context) []projection.GalleryItem {
	return projection.AllProjects(s.store.List(ctx))
}

// Catalog returns the scoring rules in display order.
func (s *Service) Catalog() []catalog.Entry {
	return catalog.Entries()
}

// Roster returns a copy of every participant in registration order.
func (s *Service) Roster(ctx context.Context) []model.Participant {
	return s.store.List(ctx)
}

// RequestEncouragement queues a message for participant id and returns the pending slot.
func (s *Service) RequestEncouragement(ctx context.Context, id string) (advice.Slot, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return advice.Slot{}, err
	}
	return s.requestAdvice(ctx, model.AdviceRequest{
		Kind:          model.AdviceEncouragement,
		Key:           advice.EncouragementKey(p.ID),
		Grade:         p.Grade,
		ParticipantID: p.ID,
		Name:          p.Name,
		Points:        p.TotalPoints,
	})
}

// RequestIdeas queues project ideas for grade and returns the pending slot.
func (s *Service) RequestIdeas(ctx context.Context, grade model.Grade) (advice.Slot, error) {
	if !grade.Valid() {
		return advice.Slot{}, fmt.Errorf("%w: %q", model.ErrUnknownGrade, grade)
	}
	return s.requestAdvice(ctx, model.AdviceRequest{
		Kind:  model.AdviceIdeas,
		Key:   advice.IdeasKey(grade),
		Grade: grade,
	})
}

func (s *Service) requestAdvice(ctx context.Context, r model.AdviceRequest) (advice.Slot, error) { //nolint:gocritic // hugeParam: request is copied into the queue anyway
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return advice.Slot{}, ErrNotStarted
	}

	r.ID = s.newID()
	r.RequestedAt = s.now()
	previous, existed := s.board.Begin(r.Key, r.ID)
	pending, _ := s.board.Get(r.Key)
	if !s.adviceQueue.Enqueue(ctx, r) {
		s.board.Restore(r.Key, r.ID, previous, existed)
		s.logger.Warn(ctx, "advice request rejected",
			logger.String("kind", string(r.Kind)),
			logger.Int("queue_length", s.adviceQueue.Len(ctx)),
		)
		return advice.Slot{}, ErrBackpressure
	}

	return pending, nil
}

// Advice returns the display slot for key.
func (s *Service) Advice(key string) (advice.Slot, bool) {
	return s.board.Get(key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"participants": s.store.Count(ctx),
		"adviceSlots":  s.board.Len(),
		"dedupeKeys":   s.deduper.Size(),
	}

	if s.started {
		stats["queueLength"] = s.adviceQueue.Len(ctx)
	}

	return stats
}
