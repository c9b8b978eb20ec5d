package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inourx99/Englishcompition/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ENGCOMP_ADDR", ":8080")
			_ = os.Setenv("ENGCOMP_STORAGE_DRIVER", "sqlite")
			_ = os.Setenv("ENGCOMP_STORAGE_PATH", "/tmp/roster.db")
			_ = os.Setenv("ENGCOMP_ADMIN_PASSPHRASE", "open-sesame")
			_ = os.Setenv("ENGCOMP_WORKER_COUNT", "4")
			_ = os.Setenv("ENGCOMP_LEADERBOARD_LIMIT", "5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StorageDriver, convey.ShouldEqual, config.DriverSQLite)
				convey.So(cfg.StoragePath, convey.ShouldEqual, "/tmp/roster.db")
				convey.So(cfg.AdminPassphrase, convey.ShouldEqual, "open-sesame")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.LeaderboardLimit, convey.ShouldEqual, 5)
				convey.So(cfg.StorageKey, convey.ShouldEqual, "english_comp_students")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
log_format: json
storage_driver: memory
queue_size: 32
ai_model: gemini-2.0-flash
`)
			_ = os.Setenv("ENGCOMP_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.StorageDriver, convey.ShouldEqual, config.DriverMemory)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.AIModel, convey.ShouldEqual, "gemini-2.0-flash")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When both a file and environment variables are set", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
worker_count: 8
`)
			_ = os.Setenv("ENGCOMP_CONFIG", tmpFile)
			_ = os.Setenv("ENGCOMP_WORKER_COUNT", "3")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("ENGCOMP_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("ENGCOMP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("ENGCOMP_QUEUE_SIZE", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the leaderboard limit exceeds the cap", func() {
			_ = os.Setenv("ENGCOMP_LEADERBOARD_LIMIT", "500")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			cfg, err := config.Load(cctx)

			convey.Convey("Then it should return the context error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
