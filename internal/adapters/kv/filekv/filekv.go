// Package filekv is a kv.Backend that keeps one file per key under a directory.
//
// Writes go to a temporary file in the same directory which is synced and
// renamed over the target, so a reader sees either the old or the new value.
package filekv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/inourx99/Englishcompition/internal/adapters/kv"
)

const fileSuffix = ".json"

// ErrInvalidKey is returned for keys that cannot be used as a file name.
var ErrInvalidKey = errors.New("filekv: invalid key")

// Store is a directory-backed kv.Backend.
type Store struct {
	root   string
	mu     sync.RWMutex
	closed bool
}

var _ kv.Backend = (*Store)(nil)

// New creates a Store rooted at root. The directory will be created if needed.
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("filekv: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filekv: create root: %w", err)
	}
	return &Store{root: filepath.Clean(root)}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, kv.ErrClosed
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("filekv: read %s: %w", key, err)
	}
	return b, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}

	f, err := os.CreateTemp(s.root, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("filekv: create temp: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(value); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("filekv: write %s: %w", key, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("filekv: sync %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("filekv: close %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("filekv: install %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) pathFor(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, key+fileSuffix), nil
}
