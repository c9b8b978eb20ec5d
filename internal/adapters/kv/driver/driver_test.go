package driver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inourx99/Englishcompition/internal/config"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name   string
		driver string
		path   string
	}{
		{"file", config.DriverFile, filepath.Join(dir, "data")},
		{"sqlite", config.DriverSQLite, filepath.Join(dir, "roster.db")},
		{"memory", config.DriverMemory, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.New()
			cfg.StorageDriver = tc.driver
			cfg.StoragePath = tc.path

			b, err := Open(cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer b.Close()

			ctx := context.Background()
			if err := b.Put(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, ok, err := b.Get(ctx, "k")
			if err != nil || !ok || string(got) != "v" {
				t.Fatalf("get = %q, %v, %v", got, ok, err)
			}
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := config.New()
	cfg.StorageDriver = "tape"
	if _, err := Open(cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}
