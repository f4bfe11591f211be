package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulse-hub/pulse-fitness-hub/internal/application/saga"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
)

type stubUserStore struct {
	tier   user.SubscriptionTier
	earned map[string]bool
	active []string
	errFor map[string]error
}

func (s *stubUserStore) SubscriptionTier(_ context.Context, userID string) (user.SubscriptionTier, error) {
	if err := s.errFor[userID]; err != nil {
		return "", err
	}
	return s.tier, nil
}

func (s *stubUserStore) EarnedAchievementIDs(context.Context, string) (map[string]bool, error) {
	return s.earned, nil
}

func (s *stubUserStore) ActiveUserIDs(context.Context, int) ([]string, error) {
	return s.active, nil
}

type stubSessionStore struct{ sessions []activity.Session }

func (s *stubSessionStore) ListSessions(_ context.Context, _ string, filter activity.SessionFilter) ([]activity.Session, error) {
	var out []activity.Session
	for _, sess := range s.sessions {
		if filter.Matches(sess) {
			out = append(out, sess)
		}
	}
	return out, nil
}

type stubStreakStore struct{}

func (stubStreakStore) CurrentStreak(context.Context, string) (int, error) { return 1, nil }

type stubExerciseStore struct{}

func (stubExerciseStore) IDsForDifficultyLevels(context.Context, []int) ([]string, error) {
	return nil, nil
}

func newHandler(t *testing.T, users *stubUserStore) *RefreshProgressHandler {
	t.Helper()
	catalog, err := achievement.NewInMemoryCatalog(achievement.BuiltinDefinitions())
	assert.NoError(t, err)

	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	flow := saga.NewProgressFlowSaga(
		users,
		&stubSessionStore{sessions: []activity.Session{{
			ID: "s1", UserID: "u1", ExerciseID: "ex1",
			ExerciseCategory: "cardio", CompletedAt: day,
			DurationSeconds: 600, Difficulty: 2,
		}}},
		stubStreakStore{},
		catalog,
		saga.NewEvaluator(stubExerciseStore{}),
		nil,
		nil,
		saga.DefaultProgressFlowConfig(),
	)
	return NewRefreshProgressHandler(users, flow, nil)
}

func TestRefreshProgress_SingleUser(t *testing.T) {
	users := &stubUserStore{tier: user.TierFree, earned: map[string]bool{}}
	handler := newHandler(t, users)

	result, err := handler.Handle(context.Background(), RefreshProgressCommand{UserID: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Users)
	assert.Empty(t, result.FailedUsers)
}

func TestRefreshProgress_BatchSkipsFailedUsers(t *testing.T) {
	users := &stubUserStore{
		tier:   user.TierFree,
		earned: map[string]bool{},
		active: []string{"u1", "broken", "u2"},
		errFor: map[string]error{"broken": assert.AnError},
	}
	handler := newHandler(t, users)

	result, err := handler.Handle(context.Background(), RefreshProgressCommand{})
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Users)
	assert.Equal(t, []string{"broken"}, result.FailedUsers)
}

func TestRefreshProgress_WindowValidation(t *testing.T) {
	cmd := RefreshProgressCommand{ActiveWindowDays: 120}
	assert.Error(t, cmd.Validate())

	cmd = RefreshProgressCommand{}
	assert.NoError(t, cmd.Validate())
	assert.Equal(t, 7, cmd.ActiveWindowDays)
}
