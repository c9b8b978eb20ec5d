// Package kv defines the durable key/value contract the roster store persists through.
package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("kv backend closed")

// Backend stores opaque values under string keys.
type Backend interface {
	// Get returns the value for key. ok is false when the key was never written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Memory is an in-process Backend.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
