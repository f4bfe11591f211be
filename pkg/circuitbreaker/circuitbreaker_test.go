package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("store is down")

func failN(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return errBoom
		})
	}
}

func succeed(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}

func TestStaysClosedBelowThreshold(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))

	failN(cb, 2)

	assert.Equal(t, StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))

	failN(cb, 3)

	assert.Equal(t, StateOpen, cb.State())

	err := succeed(cb)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))

	failN(cb, 2)
	assert.NoError(t, succeed(cb))
	failN(cb, 2)

	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenAfterTimeoutThenCloses(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(2),
		WithTimeout(10*time.Millisecond),
		WithMaxHalfOpenRequests(2),
	)

	failN(cb, 1)
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(15 * time.Millisecond)

	// First probe transitions to half-open; two successes close it.
	assert.NoError(t, succeed(cb))
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, succeed(cb))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithTimeout(10*time.Millisecond),
	)

	failN(cb, 1)
	time.Sleep(15 * time.Millisecond)

	failN(cb, 1)
	assert.Equal(t, StateOpen, cb.State())
}

func TestHalfOpenLimitsProbes(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(5),
		WithTimeout(10*time.Millisecond),
		WithMaxHalfOpenRequests(1),
	)

	failN(cb, 1)
	time.Sleep(15 * time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// The probe budget is exhausted while the first probe is in flight.
	err := succeed(cb)
	assert.ErrorIs(t, err, ErrTooManyRequests)

	close(release)
	assert.NoError(t, <-done)
}

func TestExecuteWithFallback(t *testing.T) {
	cb := New("test", WithFailureThreshold(1))
	failN(cb, 1)

	fallbackCalled := false
	err := cb.ExecuteWithFallback(context.Background(),
		func(ctx context.Context) error { return nil },
		func(err error) error {
			fallbackCalled = true
			assert.ErrorIs(t, err, ErrCircuitOpen)
			return nil
		},
	)

	assert.NoError(t, err)
	assert.True(t, fallbackCalled)
}

func TestExecuteWithFallbackPassesThroughOperationError(t *testing.T) {
	cb := New("test", WithFailureThreshold(5))

	err := cb.ExecuteWithFallback(context.Background(),
		func(ctx context.Context) error { return errBoom },
		func(err error) error { return nil },
	)

	assert.ErrorIs(t, err, errBoom)
}

func TestIsFailurePredicate(t *testing.T) {
	notFound := errors.New("not found")
	cb := New("test",
		WithFailureThreshold(1),
		WithIsFailure(func(err error) bool {
			return !errors.Is(err, notFound)
		}),
	)

	// Business errors do not trip the breaker.
	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return notFound
	})
	assert.Equal(t, StateClosed, cb.State())

	failN(cb, 1)
	assert.Equal(t, StateOpen, cb.State())
}

func TestOnStateChangeCallback(t *testing.T) {
	type transition struct {
		from, to State
	}
	var transitions []transition

	cb := New("cache",
		WithFailureThreshold(1),
		WithOnStateChange(func(name string, from, to State) {
			assert.Equal(t, "cache", name)
			transitions = append(transitions, transition{from, to})
		}),
	)

	failN(cb, 1)
	cb.Reset()
	failN(cb, 1)

	assert.Equal(t, []transition{
		{StateClosed, StateOpen},
		{StateClosed, StateOpen},
	}, transitions)
}

func TestCounts(t *testing.T) {
	cb := New("test", WithFailureThreshold(10))

	failN(cb, 2)
	assert.NoError(t, succeed(cb))

	counts := cb.Counts()
	assert.Equal(t, 3, counts.Requests)
	assert.Equal(t, 2, counts.TotalFailures)
	assert.Equal(t, 1, counts.TotalSuccesses)
	assert.Equal(t, 1, counts.ConsecutiveSuccesses)
	assert.Equal(t, 0, counts.ConsecutiveFailures)
}

func TestReset(t *testing.T) {
	cb := New("test", WithFailureThreshold(1))
	failN(cb, 1)
	assert.True(t, cb.IsOpen())

	cb.Reset()

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, Counts{}, cb.Counts())
	assert.NoError(t, succeed(cb))
}
