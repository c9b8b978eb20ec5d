package service

import (
	"time"

	"github.com/inourx99/Englishcompition/internal/adapters/kv"
	"github.com/inourx99/Englishcompition/internal/adapters/textgen"
	"github.com/inourx99/Englishcompition/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBackend sets the durable store the roster is persisted to.
// The caller keeps ownership and closes it after Stop.
func WithBackend(b kv.Backend) Option {
	return func(s *Service) {
		if b != nil {
			s.backend = b
		}
	}
}

// WithStorageKey sets the backend key the roster is stored under.
func WithStorageKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.storageKey = key
		}
	}
}

// WithGenerator sets the text generation collaborator.
func WithGenerator(g textgen.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithWorkerCount sets the number of advice workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending advice requests.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClock sets the time source for log entries, projects and advice slots.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the id source for participants, entries, projects and advice requests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLeaderboardLimit sets the leaderboard size used when the caller gives none.
func WithLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.leaderboardLimit = limit
		}
	}
}

// WithAdviceTimeout bounds a single text generation call.
func WithAdviceTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.adviceTimeout = d
		}
	}
}
