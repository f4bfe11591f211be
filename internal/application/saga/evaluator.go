package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CRITERIA EVALUATOR
// Maps an achievement criteria to a single "current" number computed from
// the user's workout history. The evaluator is the only place that knows
// how each criteria type reads the history; everything above it works with
// the resulting Progress value.
// ══════════════════════════════════════════════════════════════════════════════

// EvalInput contains everything needed to evaluate one criteria.
type EvalInput struct {
	// UserID - the user being evaluated.
	UserID string

	// Criteria - the criteria to evaluate.
	Criteria achievement.Criteria

	// Sessions - the user's full workout history, loaded once per run.
	Sessions []activity.Session

	// Streak - the user's current daily streak.
	Streak int

	// Today - evaluation moment, used by seasonal and date-range criteria.
	Today time.Time
}

// Evaluator computes the current value of an achievement criteria.
type Evaluator struct {
	exercises activity.ExerciseStore
}

// NewEvaluator creates a criteria evaluator.
func NewEvaluator(exercises activity.ExerciseStore) *Evaluator {
	return &Evaluator{exercises: exercises}
}

// Evaluate dispatches on the criteria type and returns the current value.
// Unknown criteria types are an error: they mean the catalog and the
// evaluator are out of sync.
func (e *Evaluator) Evaluate(ctx context.Context, input EvalInput) (float64, error) {
	switch cond := input.Criteria.Conditions.(type) {

	case achievement.SessionCountConditions:
		filter := activity.SessionFilter{ExerciseCategory: cond.ExerciseCategory}
		return float64(countMatching(input.Sessions, filter)), nil

	case achievement.StreakConditions:
		return float64(input.Streak), nil

	case achievement.DurationConditions:
		for _, s := range input.Sessions {
			if s.DurationSeconds >= cond.TargetSeconds {
				return 1, nil
			}
		}
		return 0, nil

	case achievement.ConsecutiveDailyConditions:
		return float64(activity.ConsecutiveDailySessions(input.Sessions)), nil

	case achievement.PersonalBestConditions:
		// Only the latest session counts: the achievement drops back to
		// incomplete as soon as a session without a PB lands on top.
		if latest, ok := activity.MostRecent(input.Sessions); ok && latest.WasPersonalBest {
			return 1, nil
		}
		return 0, nil

	case achievement.PersonalBestsCountConditions:
		return float64(e.personalBestsCount(input.Sessions, cond, input.Today)), nil

	case achievement.DifficultyLevelCountConditions:
		return e.difficultyLevelCount(ctx, input.Sessions, cond)

	case achievement.SeasonalSessionsConditions:
		// The season belongs to the current year: last year's June does
		// not count toward this summer.
		count := 0
		for _, s := range input.Sessions {
			if s.CompletedAt.Year() != input.Today.Year() {
				continue
			}
			if cond.ContainsMonth(s.CompletedAt.Month()) {
				count++
			}
		}
		return float64(count), nil

	case achievement.DateRangeSessionsConditions:
		start, end := cond.ResolveWindow(input.Today)
		filter := activity.SessionFilter{From: start, To: end}
		return float64(countMatching(input.Sessions, filter)), nil

	case achievement.ProgressiveDifficultyConditions:
		return float64(activity.ProgressiveDifficultyCount(input.Sessions)), nil

	case achievement.TimeBasedConditions:
		count := 0
		for _, s := range input.Sessions {
			if cond.Window.Contains(s.CompletedAt.Hour()) {
				count++
			}
		}
		return float64(count), nil

	default:
		return 0, shared.WrapError("progress", "Evaluate", shared.ErrInvalidInput,
			fmt.Sprintf("unknown criteria type %q", input.Criteria.Type), nil)
	}
}

// personalBestsCount counts personal bests, optionally over a trailing window.
func (e *Evaluator) personalBestsCount(sessions []activity.Session, cond achievement.PersonalBestsCountConditions, today time.Time) int {
	var from time.Time
	if cond.TrailingDays > 0 {
		from = today.AddDate(0, 0, -cond.TrailingDays)
	}

	count := 0
	for _, s := range sessions {
		if !s.WasPersonalBest {
			continue
		}
		if !from.IsZero() && s.CompletedAt.Before(from) {
			continue
		}
		count++
	}
	return count
}

// difficultyLevelCount counts sessions whose exercise belongs to the
// requested difficulty levels. The level lives on the exercise, not the
// session, so membership comes from the exercise store.
func (e *Evaluator) difficultyLevelCount(ctx context.Context, sessions []activity.Session, cond achievement.DifficultyLevelCountConditions) (float64, error) {
	ids, err := e.exercises.IDsForDifficultyLevels(ctx, cond.EffectiveLevels())
	if err != nil {
		return 0, shared.WrapError("progress", "Evaluate", shared.ErrExternalService,
			"load exercises by difficulty", err)
	}

	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}

	count := 0
	for _, s := range sessions {
		if member[s.ExerciseID] {
			count++
		}
	}
	return float64(count), nil
}

func countMatching(sessions []activity.Session, filter activity.SessionFilter) int {
	count := 0
	for _, s := range sessions {
		if filter.Matches(s) {
			count++
		}
	}
	return count
}
