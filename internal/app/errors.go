package service

import "errors"

// Sentinel errors returned by the service.
var (
	// ErrDuplicateRequest marks an award whose idempotency key was already used.
	ErrDuplicateRequest = errors.New("duplicate request")
	// ErrBackpressure means the advice queue is full.
	ErrBackpressure = errors.New("advice queue is full")
	// ErrNotStarted is returned by operations that need running workers.
	ErrNotStarted = errors.New("service not started")
)
