// Package repository owns the roster of participants and persists it through a kv backend.
package repository

import (
	"time"

	"github.com/inourx99/Englishcompition/pkg/logger"
)

// DefaultKey is the backend key holding the serialized roster.
const DefaultKey = "english_comp_students"

// Option applies a configuration option to the RosterStore.
type Option func(*RosterStore)

// WithKey sets the backend key the roster is stored under.
func WithKey(key string) Option {
	return func(s *RosterStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for load and save diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *RosterStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator sets the id source for new participants.
func WithIDGenerator(newID func() string) Option {
	return func(s *RosterStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithClock sets the time source used for persistence latency.
func WithClock(now func() time.Time) Option {
	return func(s *RosterStore) {
		if now != nil {
			s.now = now
		}
	}
}
