// Package saga contains complex business processes that orchestrate
// multiple domain operations in a coordinated manner.
package saga

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS FLOW SAGA
// Complex business process: full recomputation of a user's achievement
// progress from workout history.
// Flow: Load User Context → Load History → Evaluate Criteria (bounded
//
//	fan-out) → Cache Results → Publish Completion Events
//
// A failed evaluation degrades that one achievement to zero progress
// instead of failing the whole run: a partially fresh progress map is
// more useful than none.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressFlowInput contains data needed to recompute progress.
type ProgressFlowInput struct {
	// UserID - the user to recompute progress for.
	UserID string

	// Now - evaluation moment. Zero value means the current UTC time.
	Now time.Time
}

// Validate checks if the input is valid.
func (i *ProgressFlowInput) Validate() error {
	if i.UserID == "" {
		return errors.New("progress_flow: user ID is required")
	}
	if i.Now.IsZero() {
		i.Now = timeutil.Now()
	}
	return nil
}

// ProgressFlowResult contains the result of a progress recomputation.
type ProgressFlowResult struct {
	// UserID - the user whose progress was recomputed.
	UserID string

	// User - the user context assembled during the run, reusable by callers.
	User user.Context

	// Progress - progress per achievement ID.
	Progress map[string]achievement.Progress

	// Failed - achievement IDs that degraded to zero progress.
	Failed []string

	// CompletedNow - achievements that crossed 100% during this run and
	// were not earned before it.
	CompletedNow []string

	// ProcessedAt - when the flow completed.
	ProcessedAt time.Time
}

// Degraded returns true if any achievement failed to evaluate.
func (r *ProgressFlowResult) Degraded() bool {
	return len(r.Failed) > 0
}

// ProgressFlowStep represents a step in the progress flow.
type ProgressFlowStep string

const (
	StepLoadUser      ProgressFlowStep = "load_user"
	StepLoadHistory   ProgressFlowStep = "load_history"
	StepEvaluate      ProgressFlowStep = "evaluate"
	StepCacheProgress ProgressFlowStep = "cache_progress"
	StepPublishEvents ProgressFlowStep = "publish_events"
	StepFlowComplete  ProgressFlowStep = "complete"
)

// ProgressFlowConfig contains configuration for the progress flow saga.
type ProgressFlowConfig struct {
	// MaxConcurrency - how many achievements are evaluated in parallel.
	MaxConcurrency int

	// EvaluationTimeout - per-achievement evaluation budget.
	EvaluationTimeout time.Duration

	// CacheTTL - how long computed progress stays cached.
	CacheTTL time.Duration

	// EnableEvents - publish completion events at the end of the run.
	EnableEvents bool
}

// DefaultProgressFlowConfig returns default configuration.
func DefaultProgressFlowConfig() ProgressFlowConfig {
	return ProgressFlowConfig{
		MaxConcurrency:    8,
		EvaluationTimeout: 2 * time.Second,
		CacheTTL:          15 * time.Minute,
		EnableEvents:      true,
	}
}

// ProgressFlowSaga orchestrates the complete progress recomputation process.
type ProgressFlowSaga struct {
	users     user.UserStore
	sessions  activity.SessionStore
	streaks   activity.StreakStore
	catalog   achievement.Catalog
	evaluator *Evaluator
	cache     achievement.ProgressCache
	eventBus  shared.EventPublisher
	config    ProgressFlowConfig
}

// NewProgressFlowSaga creates a new progress flow saga with all dependencies.
// The cache and event bus are optional: a nil cache skips the caching step,
// a nil bus skips event publication.
func NewProgressFlowSaga(
	users user.UserStore,
	sessions activity.SessionStore,
	streaks activity.StreakStore,
	catalog achievement.Catalog,
	evaluator *Evaluator,
	cache achievement.ProgressCache,
	eventBus shared.EventPublisher,
	config ProgressFlowConfig,
) *ProgressFlowSaga {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultProgressFlowConfig().MaxConcurrency
	}
	if config.EvaluationTimeout <= 0 {
		config.EvaluationTimeout = DefaultProgressFlowConfig().EvaluationTimeout
	}
	return &ProgressFlowSaga{
		users:     users,
		sessions:  sessions,
		streaks:   streaks,
		catalog:   catalog,
		evaluator: evaluator,
		cache:     cache,
		eventBus:  eventBus,
		config:    config,
	}
}

// Execute runs the complete progress recomputation process.
func (s *ProgressFlowSaga) Execute(ctx context.Context, input ProgressFlowInput) (*ProgressFlowResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Load user context.
	uctx, err := s.loadUserContext(ctx, input.UserID, input.Now)
	if err != nil {
		return nil, shared.WrapError("progress", string(StepLoadUser), shared.ErrExternalService,
			"load user context", err)
	}

	// Step 2: Load workout history, once for the whole run.
	sessions, err := s.sessions.ListSessions(ctx, input.UserID, activity.SessionFilter{})
	if err != nil {
		return nil, shared.WrapError("progress", string(StepLoadHistory), shared.ErrExternalService,
			"load workout history", err)
	}
	streak, err := s.streaks.CurrentStreak(ctx, input.UserID)
	if err != nil {
		return nil, shared.WrapError("progress", string(StepLoadHistory), shared.ErrExternalService,
			"load current streak", err)
	}
	uctx.CategoryFrequency = activity.CategoryHistogram(sessions)

	// Step 3: Evaluate every available achievement with bounded fan-out.
	candidates := s.catalog.AvailableTo(uctx.IsPremium)
	progress, failed := s.evaluateAll(ctx, uctx, sessions, streak, candidates, input.Now)

	result := &ProgressFlowResult{
		UserID:      input.UserID,
		User:        uctx,
		Progress:    progress,
		Failed:      failed,
		ProcessedAt: timeutil.Now(),
	}
	for _, a := range candidates {
		if p, ok := progress[a.ID]; ok && p.IsComplete && !uctx.HasEarned(a.ID) {
			result.CompletedNow = append(result.CompletedNow, a.ID)
		}
	}

	// Step 4: Cache results. Best effort: a cold cache only costs the
	// next reader a recomputation.
	if s.cache != nil {
		if err := s.cache.PutAll(ctx, input.UserID, progress, s.config.CacheTTL); err != nil {
			result.Failed = append(result.Failed, "cache:"+input.UserID)
		}
	}

	// Step 5: Publish completion events.
	if s.config.EnableEvents && s.eventBus != nil {
		s.publishCompletions(result)
	}

	return result, nil
}

// loadUserContext assembles the user context for an evaluation run.
func (s *ProgressFlowSaga) loadUserContext(ctx context.Context, userID string, now time.Time) (user.Context, error) {
	tier, err := s.users.SubscriptionTier(ctx, userID)
	if err != nil {
		return user.Context{}, err
	}
	earned, err := s.users.EarnedAchievementIDs(ctx, userID)
	if err != nil {
		return user.Context{}, err
	}
	return user.Context{
		UserID:               userID,
		EarnedAchievementIDs: earned,
		IsPremium:            tier.IsPremium(),
		Today:                now,
	}, nil
}

// evaluateAll fans the evaluation out over a bounded worker group. A
// failed or timed-out evaluation records zero progress for that one
// achievement and never cancels the siblings.
func (s *ProgressFlowSaga) evaluateAll(
	ctx context.Context,
	uctx user.Context,
	sessions []activity.Session,
	streak int,
	candidates []achievement.Achievement,
	now time.Time,
) (map[string]achievement.Progress, []string) {
	var (
		mu       sync.Mutex
		progress = make(map[string]achievement.Progress, len(candidates))
		failed   []string
	)

	g := &errgroup.Group{}
	g.SetLimit(s.config.MaxConcurrency)

	for _, a := range candidates {
		a := a
		g.Go(func() error {
			evalCtx, cancel := context.WithTimeout(ctx, s.config.EvaluationTimeout)
			defer cancel()

			current, err := s.evaluator.Evaluate(evalCtx, EvalInput{
				UserID:   uctx.UserID,
				Criteria: a.Criteria,
				Sessions: sessions,
				Streak:   streak,
				Today:    now,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				progress[a.ID] = achievement.ZeroProgress(a.ID, a.Criteria, now)
				failed = append(failed, a.ID)
				return nil
			}
			progress[a.ID] = achievement.NewProgress(a.ID, a.Criteria, current, now)
			return nil
		})
	}

	// Workers never return errors, so Wait only synchronizes.
	_ = g.Wait()
	return progress, failed
}

// publishCompletions emits one event per newly completed achievement
// plus a summary event for the run.
func (s *ProgressFlowSaga) publishCompletions(result *ProgressFlowResult) {
	for _, id := range result.CompletedNow {
		a, ok := s.catalog.Get(id)
		if !ok {
			continue
		}
		_ = s.eventBus.Publish(shared.NewAchievementCompletedEvent(
			uuid.NewString(), result.UserID, a.ID, a.Points,
		))
	}
	_ = s.eventBus.Publish(shared.NewProgressRefreshedEvent(
		result.UserID, len(result.Progress), len(result.Failed),
	))
}
