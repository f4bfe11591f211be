package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulse-hub/pulse-fitness-hub/internal/application/saga"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/recommendation"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
)

type stubUserStore struct {
	tier   user.SubscriptionTier
	earned map[string]bool
	err    error
}

func (s *stubUserStore) SubscriptionTier(context.Context, string) (user.SubscriptionTier, error) {
	return s.tier, s.err
}

func (s *stubUserStore) EarnedAchievementIDs(context.Context, string) (map[string]bool, error) {
	return s.earned, s.err
}

func (s *stubUserStore) ActiveUserIDs(context.Context, int) ([]string, error) {
	return nil, s.err
}

type stubSessionStore struct {
	sessions []activity.Session
	err      error
}

func (s *stubSessionStore) ListSessions(_ context.Context, _ string, filter activity.SessionFilter) ([]activity.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []activity.Session
	for _, sess := range s.sessions {
		if filter.Matches(sess) {
			out = append(out, sess)
		}
	}
	return out, nil
}

type stubStreakStore struct{ streak int }

func (s *stubStreakStore) CurrentStreak(context.Context, string) (int, error) {
	return s.streak, nil
}

type stubExerciseStore struct{}

func (stubExerciseStore) IDsForDifficultyLevels(context.Context, []int) ([]string, error) {
	return nil, nil
}

func queryCatalog(t *testing.T) achievement.Catalog {
	t.Helper()
	catalog, err := achievement.NewInMemoryCatalog(achievement.BuiltinDefinitions())
	assert.NoError(t, err)
	return catalog
}

func newFlow(t *testing.T, users *stubUserStore, sessions *stubSessionStore) *saga.ProgressFlowSaga {
	t.Helper()
	return saga.NewProgressFlowSaga(
		users,
		sessions,
		&stubStreakStore{streak: 2},
		queryCatalog(t),
		saga.NewEvaluator(stubExerciseStore{}),
		nil,
		nil,
		saga.DefaultProgressFlowConfig(),
	)
}

func sessionsFor(day time.Time, count int) []activity.Session {
	out := make([]activity.Session, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, activity.Session{
			ID:               fmt.Sprintf("s%d", i),
			UserID:           "u1",
			ExerciseID:       "ex1",
			ExerciseCategory: "cardio",
			CompletedAt:      day.AddDate(0, 0, -i),
			DurationSeconds:  600,
			Difficulty:       2,
		})
	}
	return out
}

func TestGetRecommendations_HappyPath(t *testing.T) {
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	users := &stubUserStore{tier: user.TierFree, earned: map[string]bool{}}
	sessions := &stubSessionStore{sessions: sessionsFor(day, 8)}

	catalog := queryCatalog(t)
	handler := NewGetRecommendationsHandler(
		catalog,
		newFlow(t, users, sessions),
		recommendation.NewEngine(catalog, recommendation.DefaultConfig()),
		DefaultRecommendationLimits(),
		nil,
	)

	dto, err := handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "u1"})
	assert.NoError(t, err)
	assert.LessOrEqual(t, len(dto.Recommendations), DefaultRecommendationLimit)
	assert.NotEmpty(t, dto.ReportID)

	// The list respects the output invariants.
	seen := map[string]bool{}
	for i, r := range dto.Recommendations {
		assert.False(t, seen[r.AchievementID], "no duplicates")
		seen[r.AchievementID] = true
		assert.GreaterOrEqual(t, r.Priority, recommendation.MinPriority)
		assert.LessOrEqual(t, r.Priority, recommendation.MaxPriority)
		if i > 0 {
			assert.GreaterOrEqual(t, dto.Recommendations[i-1].Priority, r.Priority)
		}
	}
}

func TestGetRecommendations_PipelineFailureDegradesToEmpty(t *testing.T) {
	users := &stubUserStore{err: errors.New("db down")}
	catalog := queryCatalog(t)
	handler := NewGetRecommendationsHandler(
		catalog,
		newFlow(t, users, &stubSessionStore{}),
		recommendation.NewEngine(catalog, recommendation.DefaultConfig()),
		DefaultRecommendationLimits(),
		nil,
	)

	dto, err := handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "u1"})
	assert.NoError(t, err)
	assert.Empty(t, dto.Recommendations)
}

func TestGetRecommendations_LimitClamped(t *testing.T) {
	limits := RecommendationLimits{Default: 3, Max: 7}

	assert.Equal(t, 7, limits.clamp(50))
	assert.Equal(t, 3, limits.clamp(0))
	assert.Equal(t, 5, limits.clamp(5))

	// Zero values fall back to the package defaults.
	limits = RecommendationLimits{}
	limits.normalize()
	assert.Equal(t, DefaultRecommendationLimit, limits.Default)
	assert.Equal(t, MaxRecommendationLimit, limits.Max)

	q := GetRecommendationsQuery{}
	assert.Error(t, q.Validate())
}

func TestGetRecommendations_UsesConfiguredLimit(t *testing.T) {
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	users := &stubUserStore{tier: user.TierFree, earned: map[string]bool{}}
	sessions := &stubSessionStore{sessions: sessionsFor(day, 8)}

	catalog := queryCatalog(t)
	handler := NewGetRecommendationsHandler(
		catalog,
		newFlow(t, users, sessions),
		recommendation.NewEngine(catalog, recommendation.DefaultConfig()),
		RecommendationLimits{Default: 1, Max: 2},
		nil,
	)

	dto, err := handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "u1"})
	assert.NoError(t, err)
	assert.LessOrEqual(t, len(dto.Recommendations), 1)

	dto, err = handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "u1", Limit: 50})
	assert.NoError(t, err)
	assert.LessOrEqual(t, len(dto.Recommendations), 2)
}
