// Package worker runs text generation requests off the advice queue and
// publishes the results to the display board.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/inourx99/Englishcompition/internal/adapters/mq/queue"
	"github.com/inourx99/Englishcompition/internal/adapters/textgen"
	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/pkg/logger"
	"github.com/inourx99/Englishcompition/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount   = 2
	defaultAdviceTimeout = 20 * time.Second
)

// ErrUnknownKind is returned for a request whose kind no worker handles.
var ErrUnknownKind = errors.New("unknown advice kind")

// Request abstracts what workers read off the queue.
type Request = queue.Request

// Advisor produces display text. It never fails; errors become fallback text.
type Advisor interface {
	ProjectIdeas(ctx context.Context, grade model.Grade) textgen.Result
	Encouragement(ctx context.Context, name string, points int) textgen.Result
}

// Publisher receives finished text. Complete reports whether the result was
// still wanted; a newer request for the same key supersedes older ones.
type Publisher interface {
	Complete(key, requestID, text string, fallback bool) bool
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Request
}

// Worker processes requests until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the worker after the request in flight.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	advisor   Advisor
	publisher Publisher
	name      string
	timeout   time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, advisor Advisor, publisher Publisher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		advisor:   advisor,
		publisher: publisher,
		name:      "worker",
		timeout:   defaultAdviceTimeout,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Nop()
	}
	w.logger = w.logger.Named(w.name)

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				metrics.RecordWorkerError()
				w.logger.Error(ctx, "error processing advice request",
					logger.String("request_id", r.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown signals the worker and waits for it to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
}

// process runs one request. The advisor call gets its own deadline so a slow
// upstream cannot hold a worker forever.
func (w *InMemoryWorker) process(ctx context.Context, r Request) error { //nolint:gocritic // hugeParam: Request is passed by value for channel semantics
	rctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var res textgen.Result
	switch r.Kind {
	case model.AdviceIdeas:
		res = w.advisor.ProjectIdeas(rctx, r.Grade)
	case model.AdviceEncouragement:
		res = w.advisor.Encouragement(rctx, r.Name, r.Points)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}

	if !w.publisher.Complete(r.Key, r.ID, res.Text, res.Fallback) {
		w.logger.Debug(ctx, "advice result superseded",
			logger.String("key", r.Key), logger.String("request_id", r.ID))
		return nil
	}
	w.logger.Debug(ctx, "advice published",
		logger.String("key", r.Key),
		logger.Bool("fallback", res.Fallback),
		logger.Duration("age", time.Since(r.RequestedAt)),
	)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. Options apply to every worker.
func NewPool(workerCount int, q Queue, advisor Advisor, publisher Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  poolLogger(opts),
	}

	for i := range workerCount {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, advisor, publisher, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// poolLogger picks the logger passed through WithLogger, if any.
func poolLogger(opts []Option) logger.Logger {
	var cfg InMemoryWorker
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		return logger.Nop()
	}
	return cfg.logger.Named("worker-pool")
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets workers drain it. Workers still busy
// when ctx expires are told to stop and the context error is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			timedOut = true
			w.stop()
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
	return nil
}
