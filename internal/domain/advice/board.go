// Package advice holds generated text for display. Slots are never persisted
// and never read by the ledger.
package advice

import (
	"sync"
	"time"

	"github.com/inourx99/Englishcompition/internal/domain/model"
)

// Status of a board slot.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
)

// Slot is the latest generated text for one key.
type Slot struct {
	Key       string    `json:"key"`
	Status    Status    `json:"status"`
	Text      string    `json:"text,omitempty"`
	Fallback  bool      `json:"fallback"`
	RequestID string    `json:"request_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EncouragementKey is the slot key for a participant's encouragement.
func EncouragementKey(participantID string) string {
	return string(model.AdviceEncouragement) + ":" + participantID
}

// IdeasKey is the slot key for a grade's project ideas.
func IdeasKey(grade model.Grade) string {
	return string(model.AdviceIdeas) + ":" + string(grade)
}

// Board is a concurrency-safe set of display slots.
type Board struct {
	mu    sync.RWMutex
	slots map[string]Slot
	now   func() time.Time
}

// NewBoard creates an empty board.
func NewBoard(now func() time.Time) *Board {
	if now == nil {
		now = time.Now
	}
	return &Board{slots: make(map[string]Slot), now: now}
}

// Begin marks key as pending for requestID and returns the slot it replaced.
// The previous text stays visible until the new result arrives.
func (b *Board) Begin(key, requestID string) (previous Slot, existed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	previous, existed = b.slots[key]
	next := previous
	next.Key = key
	next.Status = StatusPending
	next.RequestID = requestID
	next.UpdatedAt = b.now()
	b.slots[key] = next
	return previous, existed
}

// Complete publishes text for key if requestID is still the latest request.
// It reports whether the result was applied.
func (b *Board) Complete(key, requestID, text string, fallback bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur, ok := b.slots[key]
	if !ok || cur.RequestID != requestID {
		return false
	}
	cur.Status = StatusReady
	cur.Text = text
	cur.Fallback = fallback
	cur.UpdatedAt = b.now()
	b.slots[key] = cur
	return true
}

// Restore reverts key to the slot returned by Begin when the request could not be queued.
func (b *Board) Restore(key, requestID string, previous Slot, existed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur, ok := b.slots[key]
	if !ok || cur.RequestID != requestID {
		return
	}
	if existed {
		b.slots[key] = previous
		return
	}
	delete(b.slots, key)
}

// Get returns the slot for key.
func (b *Board) Get(key string) (Slot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.slots[key]
	return s, ok
}

// Len returns the number of slots.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.slots)
}
