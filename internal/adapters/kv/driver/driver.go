// Package driver opens the kv backend named by the storage configuration.
package driver

import (
	"fmt"

	"github.com/inourx99/Englishcompition/internal/adapters/kv"
	"github.com/inourx99/Englishcompition/internal/adapters/kv/filekv"
	"github.com/inourx99/Englishcompition/internal/adapters/kv/sqlitekv"
	"github.com/inourx99/Englishcompition/internal/config"
)

// Open returns the backend selected by cfg.StorageDriver. The caller closes it.
func Open(cfg *config.Config) (kv.Backend, error) {
	switch cfg.StorageDriver {
	case config.DriverFile:
		b, err := filekv.New(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return b, nil
	case config.DriverSQLite:
		b, err := sqlitekv.Open(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return b, nil
	case config.DriverMemory:
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage_driver %q", config.ErrInvalidConfig, cfg.StorageDriver)
	}
}
