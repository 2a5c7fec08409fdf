package worker

import "go.uber.org/zap"

// Outcome tags the result of one guarded batch attempt.
type Outcome int

const (
	// BatchOK means the batch completed.
	BatchOK Outcome = iota
	// BatchIsolated means the batch failed but the worker may continue.
	BatchIsolated
	// BatchFatal means the failure budget is spent and the worker must die.
	BatchFatal
)

// Breaker tolerates a bounded number of batch failures per worker. The
// counter is cumulative over the worker's lifetime; successes do not reset
// it. Once more than maxFailures batches have failed, the next failure is
// fatal.
type Breaker struct {
	maxFailures int
	failures    int
	logger      *zap.Logger
}

// NewBreaker builds a Breaker allowing maxFailures isolated failures.
func NewBreaker(maxFailures int, logger *zap.Logger) *Breaker {
	return &Breaker{maxFailures: maxFailures, logger: logger}
}

// Do runs fn and classifies its failure. Isolated failures are logged here;
// a fatal outcome is the caller's signal to stop using this worker.
func (b *Breaker) Do(fn func() error) (Outcome, error) {
	err := fn()
	if err == nil {
		return BatchOK, nil
	}
	b.failures++
	if b.failures > b.maxFailures {
		return BatchFatal, err
	}
	b.logger.Error("batch failed, isolating",
		zap.Int("failures", b.failures),
		zap.Int("max_failures", b.maxFailures),
		zap.Error(err),
	)
	return BatchIsolated, err
}

// Failures reports how many batches have failed so far.
func (b *Breaker) Failures() int {
	return b.failures
}
