package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/circuitbreaker"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/retry"
)

var errDown = errors.New("connection refused")

func testRetrier() *retry.Retrier {
	return retry.New(
		retry.WithMaxAttempts(3),
		retry.WithInitialDelay(time.Millisecond),
		retry.WithJitter(0),
	)
}

// flakySessionStore fails a fixed number of times before succeeding.
type flakySessionStore struct {
	failuresLeft int
	calls        int
}

func (s *flakySessionStore) ListSessions(ctx context.Context, userID string, filter activity.SessionFilter) ([]activity.Session, error) {
	s.calls++
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return nil, errDown
	}
	return []activity.Session{{ID: "s1", UserID: userID}}, nil
}

func TestResilientSessionStoreRetriesTransientFailures(t *testing.T) {
	inner := &flakySessionStore{failuresLeft: 2}
	store := NewResilientSessionStore(inner, testRetrier(), circuitbreaker.New("db"))

	sessions, err := store.ListSessions(context.Background(), "u1", activity.SessionFilter{})

	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestResilientSessionStoreExhaustedRetriesCountOnceAgainstBreaker(t *testing.T) {
	inner := &flakySessionStore{failuresLeft: 100}
	breaker := circuitbreaker.New("db", circuitbreaker.WithFailureThreshold(2))
	store := NewResilientSessionStore(inner, testRetrier(), breaker)

	_, err := store.ListSessions(context.Background(), "u1", activity.SessionFilter{})
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())
	assert.Equal(t, 3, inner.calls)

	_, err = store.ListSessions(context.Background(), "u1", activity.SessionFilter{})
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	// The breaker now fails fast without touching the store.
	calls := inner.calls
	_, err = store.ListSessions(context.Background(), "u1", activity.SessionFilter{})
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, calls, inner.calls)
}

// brokenProgressCache always fails.
type brokenProgressCache struct {
	calls int
}

func (c *brokenProgressCache) Get(ctx context.Context, userID, achievementID string) (achievement.Progress, bool, error) {
	c.calls++
	return achievement.Progress{}, false, errDown
}

func (c *brokenProgressCache) GetAll(ctx context.Context, userID string) (map[string]achievement.Progress, error) {
	c.calls++
	return nil, errDown
}

func (c *brokenProgressCache) Put(ctx context.Context, userID string, progress achievement.Progress, ttl time.Duration) error {
	c.calls++
	return errDown
}

func (c *brokenProgressCache) PutAll(ctx context.Context, userID string, progress map[string]achievement.Progress, ttl time.Duration) error {
	c.calls++
	return errDown
}

func (c *brokenProgressCache) Invalidate(ctx context.Context, userID string) error {
	c.calls++
	return errDown
}

func TestResilientProgressCacheDegradesToMissWhenCircuitOpen(t *testing.T) {
	inner := &brokenProgressCache{}
	breaker := circuitbreaker.New("cache", circuitbreaker.WithFailureThreshold(1))
	cache := NewResilientProgressCache(inner, testRetrier(), breaker, nil)

	// First call trips the breaker and surfaces the cache error.
	_, _, err := cache.Get(context.Background(), "u1", "a1")
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	// With the circuit open, reads become silent misses.
	_, found, err := cache.Get(context.Background(), "u1", "a1")
	assert.NoError(t, err)
	assert.False(t, found)

	all, err := cache.GetAll(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Empty(t, all)

	// Writes are dropped without error.
	assert.NoError(t, cache.PutAll(context.Background(), "u1", nil, time.Minute))
	assert.NoError(t, cache.Invalidate(context.Background(), "u1"))
}

// countingUserStore records calls and always succeeds.
type countingUserStore struct {
	calls int
}

func (s *countingUserStore) SubscriptionTier(ctx context.Context, userID string) (user.SubscriptionTier, error) {
	s.calls++
	return user.TierPremium, nil
}

func (s *countingUserStore) EarnedAchievementIDs(ctx context.Context, userID string) (map[string]bool, error) {
	s.calls++
	return map[string]bool{"first-steps": true}, nil
}

func (s *countingUserStore) ActiveUserIDs(ctx context.Context, days int) ([]string, error) {
	s.calls++
	return []string{"u1", "u2"}, nil
}

func TestResilientUserStorePassesThroughOnSuccess(t *testing.T) {
	inner := &countingUserStore{}
	store := NewResilientUserStore(inner, testRetrier(), circuitbreaker.New("db"))

	tier, err := store.SubscriptionTier(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, user.TierPremium, tier)

	earned, err := store.EarnedAchievementIDs(context.Background(), "u1")
	assert.NoError(t, err)
	assert.True(t, earned["first-steps"])

	ids, err := store.ActiveUserIDs(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)

	assert.Equal(t, 3, inner.calls)
}
