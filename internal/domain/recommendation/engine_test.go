package recommendation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
)

func sessionCountAchievement(id string, rarity achievement.Rarity, target int) achievement.Achievement {
	return achievement.Achievement{
		ID:       id,
		Name:     id,
		Category: achievement.CategoryMilestones,
		Rarity:   rarity,
		Points:   10,
		Criteria: achievement.Criteria{
			Type:       achievement.CriteriaSessionCount,
			Conditions: achievement.SessionCountConditions{Target: target},
		},
	}
}

func progressAt(id string, percentage float64) achievement.Progress {
	return achievement.Progress{
		AchievementID: id,
		Current:       percentage,
		Required:      100,
		Percentage:    percentage,
		IsComplete:    percentage >= 100,
	}
}

func testCatalog(t *testing.T, defs []achievement.Achievement) achievement.Catalog {
	t.Helper()
	catalog, err := achievement.NewInMemoryCatalog(defs)
	assert.NoError(t, err)
	return catalog
}

func TestEngine_AlmostComplete(t *testing.T) {
	defs := []achievement.Achievement{
		sessionCountAchievement("a", achievement.RarityCommon, 10),
		sessionCountAchievement("b", achievement.RarityCommon, 10),
		sessionCountAchievement("c", achievement.RarityCommon, 10),
		sessionCountAchievement("d", achievement.RarityCommon, 10),
		sessionCountAchievement("e", achievement.RarityCommon, 10),
	}
	engine := NewEngine(testCatalog(t, defs), Config{
		EnableAlmostComplete: true,
	})

	input := Input{
		Candidates: defs,
		Progress: map[string]achievement.Progress{
			"a": progressAt("a", 95),
			"b": progressAt("b", 49), // below the band
			"c": progressAt("c", 72),
			"d": progressAt("d", 100), // complete, excluded
			"e": progressAt("e", 60),
		},
		User: user.Context{UserID: "u1"},
	}

	recs := engine.Generate(input, 5)

	// Top three of the 50-99 band, highest percentage first.
	assert.Len(t, recs, 3)
	assert.Equal(t, "a", recs[0].Achievement.ID)
	assert.Equal(t, "c", recs[1].Achievement.ID)
	assert.Equal(t, "e", recs[2].Achievement.ID)

	// 95% -> 10, 72% -> 8, 60% -> 6.
	assert.Equal(t, 10, recs[0].Priority)
	assert.Equal(t, 8, recs[1].Priority)
	assert.Equal(t, 6, recs[2].Priority)
	assert.Equal(t, ReasonAlmostComplete, recs[0].Reason)
}

func TestEngine_NextTier_TargetRarity(t *testing.T) {
	// Earned: 6 common, 2 uncommon. Uncommon is the first tier under
	// the threshold, so uncommon candidates win the slot.
	var defs []achievement.Achievement
	earned := map[string]bool{}
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("common-%d", i)
		defs = append(defs, sessionCountAchievement(id, achievement.RarityCommon, 10))
		earned[id] = true
	}
	for i := 0; i < 2; i++ {
		id := fmt.Sprintf("uncommon-%d", i)
		defs = append(defs, sessionCountAchievement(id, achievement.RarityUncommon, 10))
		earned[id] = true
	}
	candidates := []achievement.Achievement{
		sessionCountAchievement("uncommon-next", achievement.RarityUncommon, 20),
		sessionCountAchievement("uncommon-far", achievement.RarityUncommon, 50),
		sessionCountAchievement("rare-next", achievement.RarityRare, 20),
	}
	defs = append(defs, candidates...)

	engine := NewEngine(testCatalog(t, defs), Config{EnableNextTier: true})

	recs := engine.Generate(Input{
		Candidates: candidates,
		Progress: map[string]achievement.Progress{
			"uncommon-next": progressAt("uncommon-next", 30),
			"uncommon-far":  progressAt("uncommon-far", 10),
			"rare-next":     progressAt("rare-next", 90),
		},
		User: user.Context{UserID: "u1", EarnedAchievementIDs: earned},
	}, 5)

	assert.Len(t, recs, 2)
	assert.Equal(t, "uncommon-next", recs[0].Achievement.ID)
	assert.Equal(t, "uncommon-far", recs[1].Achievement.ID)
	for _, r := range recs {
		assert.Equal(t, ReasonNextTier, r.Reason)
		assert.Equal(t, 7, r.Priority)
	}
}

func TestEngine_NextTier_AllTiersSaturated(t *testing.T) {
	var defs []achievement.Achievement
	earned := map[string]bool{}
	for _, rarity := range []achievement.Rarity{
		achievement.RarityCommon,
		achievement.RarityUncommon,
		achievement.RarityRare,
	} {
		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("%s-%d", rarity, i)
			defs = append(defs, sessionCountAchievement(id, rarity, 10))
			earned[id] = true
		}
	}
	epic := sessionCountAchievement("epic-goal", achievement.RarityEpic, 100)
	defs = append(defs, epic)

	engine := NewEngine(testCatalog(t, defs), Config{EnableNextTier: true})

	recs := engine.Generate(Input{
		Candidates: []achievement.Achievement{epic},
		Progress:   map[string]achievement.Progress{},
		User:       user.Context{UserID: "u1", EarnedAchievementIDs: earned},
	}, 5)

	assert.Len(t, recs, 1)
	assert.Equal(t, "epic-goal", recs[0].Achievement.ID)
}

func TestEngine_CategoryDiversity(t *testing.T) {
	neglected := sessionCountAchievement("stretch-goal", achievement.RarityCommon, 10)
	neglected.RelatedExerciseCategories = []string{"flexibility"}
	other := sessionCountAchievement("cardio-goal", achievement.RarityCommon, 10)
	other.RelatedExerciseCategories = []string{"cardio"}
	defs := []achievement.Achievement{neglected, other}

	engine := NewEngine(testCatalog(t, defs), Config{EnableCategoryDiversity: true})

	recs := engine.Generate(Input{
		Candidates: defs,
		Progress:   map[string]achievement.Progress{},
		User: user.Context{
			UserID:            "u1",
			CategoryFrequency: map[string]int{"cardio": 20, "flexibility": 1},
		},
	}, 5)

	assert.Len(t, recs, 1)
	assert.Equal(t, "stretch-goal", recs[0].Achievement.ID)
	assert.Equal(t, ReasonCategoryDiversity, recs[0].Reason)
	assert.Equal(t, 5, recs[0].Priority)

	// No workout history means no diversity signal.
	recs = engine.Generate(Input{
		Candidates: defs,
		User:       user.Context{UserID: "u1"},
	}, 5)
	assert.Empty(t, recs)
}

func TestEngine_SeasonalTimely(t *testing.T) {
	summer := sessionCountAchievement("summer-grind", achievement.RarityCommon, 10)
	summer.Criteria = achievement.Criteria{
		Type: achievement.CriteriaSeasonalSessions,
		Conditions: achievement.SeasonalSessionsConditions{
			Target: 10,
			Months: []time.Month{time.June, time.July, time.August},
		},
	}
	holiday := sessionCountAchievement("holiday-hustle", achievement.RarityCommon, 10)
	holiday.Criteria = achievement.Criteria{
		Type: achievement.CriteriaDateRangeSessions,
		Conditions: achievement.DateRangeSessionsConditions{
			Target:     10,
			StartMonth: time.November,
			StartDay:   20,
			EndMonth:   time.January,
			EndDay:     5,
		},
	}
	defs := []achievement.Achievement{summer, holiday}

	engine := NewEngine(testCatalog(t, defs), Config{EnableSeasonalTimely: true})

	// Late December: the holiday window is active, summer is not.
	recs := engine.Generate(Input{
		Candidates: defs,
		User: user.Context{
			UserID: "u1",
			Today:  time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC),
		},
	}, 5)
	assert.Len(t, recs, 1)
	assert.Equal(t, "holiday-hustle", recs[0].Achievement.ID)
	assert.Equal(t, 8, recs[0].Priority)

	// Mid-July: summer takes the slot.
	recs = engine.Generate(Input{
		Candidates: defs,
		User: user.Context{
			UserID: "u1",
			Today:  time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC),
		},
	}, 5)
	assert.Len(t, recs, 1)
	assert.Equal(t, "summer-grind", recs[0].Achievement.ID)
}

func TestEngine_Generate_RespectsLimit(t *testing.T) {
	var defs []achievement.Achievement
	progress := map[string]achievement.Progress{}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("a-%d", i)
		defs = append(defs, sessionCountAchievement(id, achievement.RarityCommon, 10))
		progress[id] = progressAt(id, 55+float64(i))
	}

	engine := NewEngine(testCatalog(t, defs), DefaultConfig())

	recs := engine.Generate(Input{
		Candidates: defs,
		Progress:   progress,
		User:       user.Context{UserID: "u1", Today: time.Now()},
	}, 2)

	assert.Len(t, recs, 2)
}
