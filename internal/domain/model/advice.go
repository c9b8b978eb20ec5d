package model

import "time"

// AdviceKind distinguishes the two text generation requests.
type AdviceKind string

const (
	AdviceIdeas         AdviceKind = "ideas"
	AdviceEncouragement AdviceKind = "encouragement"
)

// AdviceRequest is a unit of text generation work carried by the queue.
type AdviceRequest struct {
	ID            string
	Kind          AdviceKind
	Key           string // board slot the result is published to
	Grade         Grade
	ParticipantID string
	Name          string
	Points        int
	RequestedAt   time.Time
}
