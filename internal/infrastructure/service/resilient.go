// Package service adapts concrete infrastructure to the domain ports,
// adding resilience: transient store failures are retried, persistent
// failures trip a circuit breaker so a dead dependency fails fast.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/circuitbreaker"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/retry"
)

// LogStateChanges returns a circuit breaker callback that logs state
// transitions through the given logger.
func LogStateChanges(logger *slog.Logger) func(name string, from, to circuitbreaker.State) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	}
}

// execute runs op under the breaker, retrying transient failures inside
// a single breaker request. An exhausted retry sequence counts as one
// failure against the breaker.
func execute(ctx context.Context, breaker *circuitbreaker.CircuitBreaker, retrier *retry.Retrier, op func(ctx context.Context) error) error {
	return breaker.Execute(ctx, func(ctx context.Context) error {
		return retrier.Do(ctx, op)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// DATABASE STORES
// ══════════════════════════════════════════════════════════════════════════════

// ResilientUserStore decorates a user.UserStore with retry and circuit
// breaking. Not-found errors are permanent and never retried.
type ResilientUserStore struct {
	inner   user.UserStore
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewResilientUserStore wraps the given store. The breaker is shared
// with the other database stores so one dead database trips them all.
func NewResilientUserStore(inner user.UserStore, retrier *retry.Retrier, breaker *circuitbreaker.CircuitBreaker) *ResilientUserStore {
	return &ResilientUserStore{inner: inner, retrier: retrier, breaker: breaker}
}

func (s *ResilientUserStore) SubscriptionTier(ctx context.Context, userID string) (user.SubscriptionTier, error) {
	var tier user.SubscriptionTier
	err := execute(ctx, s.breaker, s.retrier, func(ctx context.Context) error {
		var opErr error
		tier, opErr = s.inner.SubscriptionTier(ctx, userID)
		return opErr
	})
	return tier, err
}

func (s *ResilientUserStore) EarnedAchievementIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var earned map[string]bool
	err := execute(ctx, s.breaker, s.retrier, func(ctx context.Context) error {
		var opErr error
		earned, opErr = s.inner.EarnedAchievementIDs(ctx, userID)
		return opErr
	})
	return earned, err
}

func (s *ResilientUserStore) ActiveUserIDs(ctx context.Context, days int) ([]string, error) {
	var ids []string
	err := execute(ctx, s.breaker, s.retrier, func(ctx context.Context) error {
		var opErr error
		ids, opErr = s.inner.ActiveUserIDs(ctx, days)
		return opErr
	})
	return ids, err
}

// ResilientSessionStore decorates an activity.SessionStore with retry
// and circuit breaking.
type ResilientSessionStore struct {
	inner   activity.SessionStore
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewResilientSessionStore wraps the given store.
func NewResilientSessionStore(inner activity.SessionStore, retrier *retry.Retrier, breaker *circuitbreaker.CircuitBreaker) *ResilientSessionStore {
	return &ResilientSessionStore{inner: inner, retrier: retrier, breaker: breaker}
}

func (s *ResilientSessionStore) ListSessions(ctx context.Context, userID string, filter activity.SessionFilter) ([]activity.Session, error) {
	var sessions []activity.Session
	err := execute(ctx, s.breaker, s.retrier, func(ctx context.Context) error {
		var opErr error
		sessions, opErr = s.inner.ListSessions(ctx, userID, filter)
		return opErr
	})
	return sessions, err
}

// ResilientStreakStore decorates an activity.StreakStore with retry and
// circuit breaking.
type ResilientStreakStore struct {
	inner   activity.StreakStore
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewResilientStreakStore wraps the given store.
func NewResilientStreakStore(inner activity.StreakStore, retrier *retry.Retrier, breaker *circuitbreaker.CircuitBreaker) *ResilientStreakStore {
	return &ResilientStreakStore{inner: inner, retrier: retrier, breaker: breaker}
}

func (s *ResilientStreakStore) CurrentStreak(ctx context.Context, userID string) (int, error) {
	var streak int
	err := execute(ctx, s.breaker, s.retrier, func(ctx context.Context) error {
		var opErr error
		streak, opErr = s.inner.CurrentStreak(ctx, userID)
		return opErr
	})
	return streak, err
}

// ResilientExerciseStore decorates an activity.ExerciseStore with retry
// and circuit breaking.
type ResilientExerciseStore struct {
	inner   activity.ExerciseStore
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewResilientExerciseStore wraps the given store.
func NewResilientExerciseStore(inner activity.ExerciseStore, retrier *retry.Retrier, breaker *circuitbreaker.CircuitBreaker) *ResilientExerciseStore {
	return &ResilientExerciseStore{inner: inner, retrier: retrier, breaker: breaker}
}

func (s *ResilientExerciseStore) IDsForDifficultyLevels(ctx context.Context, levels []int) ([]string, error) {
	var ids []string
	err := execute(ctx, s.breaker, s.retrier, func(ctx context.Context) error {
		var opErr error
		ids, opErr = s.inner.IDsForDifficultyLevels(ctx, levels)
		return opErr
	})
	return ids, err
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS CACHE
// ══════════════════════════════════════════════════════════════════════════════

// ResilientProgressCache decorates an achievement.ProgressCache. The
// cache is optional, so an open circuit degrades reads to a miss and
// drops writes instead of propagating the failure.
type ResilientProgressCache struct {
	inner   achievement.ProgressCache
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewResilientProgressCache wraps the given cache.
func NewResilientProgressCache(inner achievement.ProgressCache, retrier *retry.Retrier, breaker *circuitbreaker.CircuitBreaker, logger *slog.Logger) *ResilientProgressCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientProgressCache{inner: inner, retrier: retrier, breaker: breaker, logger: logger}
}

// circuitRejected reports whether err came from the breaker itself
// rather than the wrapped cache.
func circuitRejected(err error) bool {
	return errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests)
}

func (c *ResilientProgressCache) Get(ctx context.Context, userID, achievementID string) (achievement.Progress, bool, error) {
	var (
		progress achievement.Progress
		found    bool
	)
	err := execute(ctx, c.breaker, c.retrier, func(ctx context.Context) error {
		var opErr error
		progress, found, opErr = c.inner.Get(ctx, userID, achievementID)
		return opErr
	})
	if circuitRejected(err) {
		return achievement.Progress{}, false, nil
	}
	return progress, found, err
}

func (c *ResilientProgressCache) GetAll(ctx context.Context, userID string) (map[string]achievement.Progress, error) {
	var all map[string]achievement.Progress
	err := execute(ctx, c.breaker, c.retrier, func(ctx context.Context) error {
		var opErr error
		all, opErr = c.inner.GetAll(ctx, userID)
		return opErr
	})
	if circuitRejected(err) {
		return map[string]achievement.Progress{}, nil
	}
	return all, err
}

func (c *ResilientProgressCache) Put(ctx context.Context, userID string, progress achievement.Progress, ttl time.Duration) error {
	err := execute(ctx, c.breaker, c.retrier, func(ctx context.Context) error {
		return c.inner.Put(ctx, userID, progress, ttl)
	})
	if circuitRejected(err) {
		c.logger.Debug("progress cache write dropped, circuit open", "user_id", userID)
		return nil
	}
	return err
}

func (c *ResilientProgressCache) PutAll(ctx context.Context, userID string, progress map[string]achievement.Progress, ttl time.Duration) error {
	err := execute(ctx, c.breaker, c.retrier, func(ctx context.Context) error {
		return c.inner.PutAll(ctx, userID, progress, ttl)
	})
	if circuitRejected(err) {
		c.logger.Debug("progress cache write dropped, circuit open", "user_id", userID)
		return nil
	}
	return err
}

func (c *ResilientProgressCache) Invalidate(ctx context.Context, userID string) error {
	err := execute(ctx, c.breaker, c.retrier, func(ctx context.Context) error {
		return c.inner.Invalidate(ctx, userID)
	})
	if circuitRejected(err) {
		return nil
	}
	return err
}
