package ledger

import "time"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source for new entries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator sets the id source for new entries and projects.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}
