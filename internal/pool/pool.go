// Package pool schedules page-id batches over a fixed set of workers with
// a run-wide deadline.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/citesweep/citesweep/internal/metrics"
	"github.com/citesweep/citesweep/internal/pipeline"
	"github.com/citesweep/citesweep/internal/worker"
)

// InitWorker constructs one worker's private fetch client, extractor and
// store connection. It is invoked once per pool slot before that slot
// processes any batch.
type InitWorker func(ctx context.Context) (*worker.Worker, error)

// Config controls pool behavior.
type Config struct {
	// Workers is the number of concurrent pool slots.
	Workers int
	// MaxFailures is the per-worker isolated failure budget.
	MaxFailures int
	// Deadline bounds the whole run; zero means unlimited.
	Deadline time.Duration
}

// Pool runs batches over Workers concurrent workers until every batch is
// processed or the deadline elapses.
type Pool struct {
	cfg    Config
	initFn InitWorker
	logger *zap.Logger
}

// Result summarizes one run.
type Result struct {
	Completed   int
	Isolated    int
	DeadWorkers int
	TimedOut    bool
}

// New builds a Pool. It fails only on an unusable configuration.
func New(cfg Config, initFn InitWorker, logger *zap.Logger) (*Pool, error) {
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("pool requires at least one worker, got %d", cfg.Workers)
	}
	if initFn == nil {
		return nil, fmt.Errorf("pool requires a worker initializer")
	}
	metrics.Init()
	return &Pool{cfg: cfg, initFn: initFn, logger: logger}, nil
}

// Run dispatches the batches and blocks until they are all handled or the
// deadline expires. On expiry the shared context is canceled, which aborts
// in-flight fetch and store I/O; nothing waits for the current batch to
// finish. Rows already durably written stand, everything else from
// interrupted batches is discarded. Workers are always joined before Run
// returns, whichever way the run ends.
func (p *Pool) Run(ctx context.Context, batches [][]pipeline.PageID) (Result, error) {
	runCtx := ctx
	if p.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.cfg.Deadline)
		defer cancel()
	}

	work := make(chan []pipeline.PageID)
	workersDone := make(chan struct{})

	go func() {
		defer close(work)
		for _, batch := range batches {
			select {
			case work <- batch:
			case <-runCtx.Done():
				return
			case <-workersDone:
				return
			}
		}
	}()

	var (
		wg          sync.WaitGroup
		completed   atomic.Int64
		isolated    atomic.Int64
		deadWorkers atomic.Int64
	)

	for slot := range p.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger := p.logger.With(zap.Int("worker", slot))

			wk, err := p.initFn(runCtx)
			if err != nil {
				// A worker that cannot initialize must not run; the pool
				// continues with reduced capacity.
				logger.Error("worker init failed", zap.Error(err))
				deadWorkers.Add(1)
				return
			}
			defer wk.Close()

			metrics.IncActiveWorkers()
			defer metrics.DecActiveWorkers()

			breaker := worker.NewBreaker(p.cfg.MaxFailures, logger)
			for {
				select {
				case <-runCtx.Done():
					return
				case batch, ok := <-work:
					if !ok {
						return
					}
					start := time.Now()
					outcome, err := breaker.Do(func() error {
						return wk.ProcessBatch(runCtx, batch)
					})
					switch outcome {
					case worker.BatchOK:
						completed.Add(1)
						metrics.ObserveBatch("completed", time.Since(start))
					case worker.BatchIsolated:
						isolated.Add(1)
						metrics.ObserveBatch("isolated", time.Since(start))
					case worker.BatchFatal:
						logger.Error("worker failure budget spent, terminating",
							zap.Int("failures", breaker.Failures()),
							zap.Error(err),
						)
						deadWorkers.Add(1)
						metrics.ObserveBatch("fatal", time.Since(start))
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(workersDone)

	res := Result{
		Completed:   int(completed.Load()),
		Isolated:    int(isolated.Load()),
		DeadWorkers: int(deadWorkers.Load()),
		TimedOut:    errors.Is(context.Cause(runCtx), context.DeadlineExceeded) && ctx.Err() == nil,
	}

	handled := res.Completed + res.Isolated
	if res.DeadWorkers == p.cfg.Workers && handled < len(batches) && !res.TimedOut {
		return res, fmt.Errorf("all %d workers terminated with %d of %d batches unhandled",
			p.cfg.Workers, len(batches)-handled, len(batches))
	}
	return res, nil
}
