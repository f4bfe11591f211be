package saga

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
)

type fakeUserStore struct {
	tier   user.SubscriptionTier
	earned map[string]bool
	active []string
	err    error
}

func (f *fakeUserStore) SubscriptionTier(context.Context, string) (user.SubscriptionTier, error) {
	return f.tier, f.err
}

func (f *fakeUserStore) EarnedAchievementIDs(context.Context, string) (map[string]bool, error) {
	return f.earned, f.err
}

func (f *fakeUserStore) ActiveUserIDs(context.Context, int) ([]string, error) {
	return f.active, f.err
}

type fakeSessionStore struct {
	sessions []activity.Session
	err      error
}

func (f *fakeSessionStore) ListSessions(_ context.Context, _ string, filter activity.SessionFilter) ([]activity.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []activity.Session
	for _, s := range f.sessions {
		if filter.Matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeStreakStore struct {
	streak int
	err    error
}

func (f *fakeStreakStore) CurrentStreak(context.Context, string) (int, error) {
	return f.streak, f.err
}

type fakeProgressCache struct {
	mu     sync.Mutex
	byUser map[string]map[string]achievement.Progress
	putErr error
	getErr error
}

func newFakeProgressCache() *fakeProgressCache {
	return &fakeProgressCache{byUser: map[string]map[string]achievement.Progress{}}
}

func (f *fakeProgressCache) Get(_ context.Context, userID, achievementID string) (achievement.Progress, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUser[userID][achievementID]
	return p, ok, f.getErr
}

func (f *fakeProgressCache) GetAll(_ context.Context, userID string) (map[string]achievement.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUser[userID], f.getErr
}

func (f *fakeProgressCache) Put(_ context.Context, userID string, p achievement.Progress, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if f.byUser[userID] == nil {
		f.byUser[userID] = map[string]achievement.Progress{}
	}
	f.byUser[userID][p.AchievementID] = p
	return nil
}

func (f *fakeProgressCache) PutAll(ctx context.Context, userID string, progress map[string]achievement.Progress, ttl time.Duration) error {
	for _, p := range progress {
		if err := f.Put(ctx, userID, p, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeProgressCache) Invalidate(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byUser, userID)
	return nil
}

type fakeEventBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func (f *fakeEventBus) Publish(event shared.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventBus) ofType(t shared.EventType) []shared.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []shared.Event
	for _, e := range f.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

func flowCatalog(t *testing.T) achievement.Catalog {
	t.Helper()
	catalog, err := achievement.NewInMemoryCatalog(achievement.BuiltinDefinitions())
	assert.NoError(t, err)
	return catalog
}

func newTestFlow(t *testing.T, users *fakeUserStore, sessions *fakeSessionStore, cache achievement.ProgressCache, bus shared.EventPublisher) *ProgressFlowSaga {
	t.Helper()
	return NewProgressFlowSaga(
		users,
		sessions,
		&fakeStreakStore{streak: 3},
		flowCatalog(t),
		NewEvaluator(&fakeExerciseStore{}),
		cache,
		bus,
		DefaultProgressFlowConfig(),
	)
}

func TestProgressFlow_ComputesAllAvailable(t *testing.T) {
	users := &fakeUserStore{tier: user.TierFree, earned: map[string]bool{}}
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	sessions := &fakeSessionStore{sessions: []activity.Session{
		session(day),
		session(day.AddDate(0, 0, -1)),
	}}
	cache := newFakeProgressCache()

	flow := newTestFlow(t, users, sessions, cache, nil)

	result, err := flow.Execute(context.Background(), ProgressFlowInput{UserID: "u1", Now: day})
	assert.NoError(t, err)
	assert.False(t, result.Degraded())

	// One progress entry per available achievement, all cached.
	available := flowCatalog(t).AvailableTo(false)
	assert.Len(t, result.Progress, len(available))
	assert.Len(t, cache.byUser["u1"], len(available))

	for id, p := range result.Progress {
		assert.Equal(t, id, p.AchievementID)
		assert.GreaterOrEqual(t, p.Percentage, 0.0)
		assert.LessOrEqual(t, p.Percentage, 100.0)
		assert.Equal(t, p.Percentage >= 100, p.IsComplete)
	}
}

func TestProgressFlow_PublishesCompletionEvents(t *testing.T) {
	users := &fakeUserStore{tier: user.TierFree, earned: map[string]bool{}}
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// A single session completes the entry-level session count achievement.
	sessions := &fakeSessionStore{sessions: []activity.Session{session(day)}}
	bus := &fakeEventBus{}

	flow := newTestFlow(t, users, sessions, nil, bus)

	result, err := flow.Execute(context.Background(), ProgressFlowInput{UserID: "u1", Now: day})
	assert.NoError(t, err)
	assert.NotEmpty(t, result.CompletedNow)

	completed := bus.ofType(shared.EventAchievementCompleted)
	assert.Len(t, completed, len(result.CompletedNow))
	assert.Len(t, bus.ofType(shared.EventProgressRefreshed), 1)
}

func TestProgressFlow_AlreadyEarnedNotCompletedAgain(t *testing.T) {
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	users := &fakeUserStore{tier: user.TierFree, earned: map[string]bool{"first-steps": true}}
	sessions := &fakeSessionStore{sessions: []activity.Session{session(day)}}

	flow := newTestFlow(t, users, sessions, nil, nil)

	result, err := flow.Execute(context.Background(), ProgressFlowInput{UserID: "u1", Now: day})
	assert.NoError(t, err)
	assert.NotContains(t, result.CompletedNow, "first-steps")
}

func TestProgressFlow_UserLoadFailureIsFatal(t *testing.T) {
	users := &fakeUserStore{err: errors.New("db down")}
	flow := newTestFlow(t, users, &fakeSessionStore{}, nil, nil)

	_, err := flow.Execute(context.Background(), ProgressFlowInput{UserID: "u1"})
	assert.Error(t, err)
}

func TestProgressFlow_RequiresUserID(t *testing.T) {
	flow := newTestFlow(t, &fakeUserStore{}, &fakeSessionStore{}, nil, nil)

	_, err := flow.Execute(context.Background(), ProgressFlowInput{})
	assert.Error(t, err)
}
