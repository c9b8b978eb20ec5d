package main

import (
	"context"
	"net/http"
	"time"

	"github.com/inourx99/Englishcompition/internal/adapters/http/api"
	"github.com/inourx99/Englishcompition/internal/adapters/http/site"
	"github.com/inourx99/Englishcompition/internal/adapters/http/swagger"
	"github.com/inourx99/Englishcompition/internal/adapters/kv"
	"github.com/inourx99/Englishcompition/internal/adapters/kv/driver"
	"github.com/inourx99/Englishcompition/internal/adapters/textgen"
	app "github.com/inourx99/Englishcompition/internal/app"
	"github.com/inourx99/Englishcompition/internal/config"
	"github.com/inourx99/Englishcompition/pkg/logger"
	"github.com/inourx99/Englishcompition/pkg/metrics"
)

// openBackend opens the durable store selected by storage_driver.
func openBackend(cfg *config.Config) (kv.Backend, error) {
	return driver.Open(cfg)
}

func newGenerator(cfg *config.Config, log logger.Logger) *textgen.GeminiClient {
	return textgen.NewGeminiClient(cfg.AIAPIKey,
		textgen.WithBaseURL(cfg.AIBaseURL),
		textgen.WithModel(cfg.AIModel),
		textgen.WithTimeout(cfg.AITimeout()),
		textgen.WithMaxAttempts(cfg.AIMaxAttempts),
		textgen.WithLogger(log.Named("gemini")),
	)
}

func newService(cfg *config.Config, backend kv.Backend, gen textgen.Generator, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log),
		app.WithBackend(backend),
		app.WithStorageKey(cfg.StorageKey),
		app.WithGenerator(gen),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithLeaderboardLimit(cfg.LeaderboardLimit),
		// One extra second so the client's own timeout fires first.
		app.WithAdviceTimeout(cfg.AITimeout()+time.Second),
	)
}

// newMux registers the API, the docs and the scoreboard page.
func newMux(cfg *config.Config, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	api.NewServer(svc, svc,
		api.WithAdminPassphrase(cfg.AdminPassphrase),
		api.WithLeaderboardLimits(cfg.LeaderboardLimit, cfg.MaxLeaderboardLimit),
		api.WithLogger(log.Named("api")),
	).Register(mux)
	swagger.Register(mux)
	site.Register(mux)

	return mux
}

// startServiceMetricsUpdater refreshes gauges derived from service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if started, ok := stats["started"].(bool); ok && !started {
		metrics.UpdateWorkerCount(0)
	}
}
