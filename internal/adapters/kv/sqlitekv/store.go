// Package sqlitekv is a kv.Backend stored in a single SQLite table.
package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	// SQLite driver registration.
	_ "modernc.org/sqlite"

	"github.com/inourx99/Englishcompition/internal/adapters/kv"
)

const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Store provides SQLite-backed persistence for kv entries.
type Store struct {
	sqlDB  *sql.DB
	now    func() time.Time
	closed atomic.Bool
}

var _ kv.Backend = (*Store)(nil)

// Open opens and migrates a kv SQLite store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	sqlDB, err := sql.Open("sqlite", filepath.Clean(path)+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
// Calls after the first are no-ops.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil || s.closed.Swap(true) {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) unusable() bool {
	return s == nil || s.sqlDB == nil || s.closed.Load()
}

// Get loads the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.unusable() {
		return nil, false, kv.ErrClosed
	}
	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get kv entry: %w", err)
	}
	return value, true, nil
}

// Put upserts the value stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if s.unusable() {
		return kv.ErrClosed
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put kv entry: %w", err)
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	if s.unusable() {
		return time.Time{}, false, kv.ErrClosed
	}
	var ms int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT updated_at FROM kv_entries WHERE key = ?`, key).Scan(&ms)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("get kv timestamp: %w", err)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}
