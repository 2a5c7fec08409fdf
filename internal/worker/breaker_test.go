package worker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBreakerToleratesMaxFailures(t *testing.T) {
	t.Parallel()

	b := NewBreaker(5, zap.NewNop())
	fail := func() error { return errors.New("boom") }

	for i := 1; i <= 5; i++ {
		outcome, err := b.Do(fail)
		require.Equal(t, BatchIsolated, outcome, "failure %d should be isolated", i)
		require.Error(t, err)
	}
	require.Equal(t, 5, b.Failures())

	outcome, err := b.Do(fail)
	require.Equal(t, BatchFatal, outcome)
	require.Error(t, err)
}

func TestBreakerSuccessDoesNotResetCounter(t *testing.T) {
	t.Parallel()

	b := NewBreaker(2, zap.NewNop())
	fail := func() error { return errors.New("boom") }
	ok := func() error { return nil }

	outcome, err := b.Do(fail)
	require.Equal(t, BatchIsolated, outcome)
	require.Error(t, err)

	outcome, err = b.Do(ok)
	require.Equal(t, BatchOK, outcome)
	require.NoError(t, err)

	outcome, _ = b.Do(fail)
	require.Equal(t, BatchIsolated, outcome)

	// Third failure exceeds the budget of two even with a success between.
	outcome, _ = b.Do(fail)
	require.Equal(t, BatchFatal, outcome)
}
