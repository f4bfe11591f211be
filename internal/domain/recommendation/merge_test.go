package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
)

func recommended(id string, reason Reason, priority int) Recommended {
	return Recommended{
		Achievement: achievement.Achievement{ID: id, Name: id},
		Reason:      reason,
		Priority:    priority,
	}
}

func TestMergeByStrategy_LastStrategyWins(t *testing.T) {
	// "summer-grind" is both almost complete (priority 9) and seasonal.
	// The later strategy in the merge order owns the final entry.
	byStrategy := map[Reason][]Recommended{
		ReasonAlmostComplete: {
			recommended("summer-grind", ReasonAlmostComplete, 9),
			recommended("century-club", ReasonAlmostComplete, 7),
		},
		ReasonSeasonalTimely: {
			recommended("summer-grind", ReasonSeasonalTimely, 8),
		},
	}

	merged := MergeByStrategy(DefaultStrategyOrder(), byStrategy)

	assert.Len(t, merged, 2)
	ids := map[string]Recommended{}
	for _, r := range merged {
		ids[r.Achievement.ID] = r
	}
	assert.Equal(t, ReasonSeasonalTimely, ids["summer-grind"].Reason)
	assert.Equal(t, 8, ids["summer-grind"].Priority)
}

func TestMergeByStrategy_SortsByPriorityDescending(t *testing.T) {
	byStrategy := map[Reason][]Recommended{
		ReasonAlmostComplete: {
			recommended("a", ReasonAlmostComplete, 6),
		},
		ReasonNextTier: {
			recommended("b", ReasonNextTier, 7),
		},
		ReasonCategoryDiversity: {
			recommended("c", ReasonCategoryDiversity, 5),
		},
		ReasonSeasonalTimely: {
			recommended("d", ReasonSeasonalTimely, 8),
		},
	}

	merged := MergeByStrategy(DefaultStrategyOrder(), byStrategy)

	assert.Len(t, merged, 4)
	assert.Equal(t, "d", merged[0].Achievement.ID)
	assert.Equal(t, "b", merged[1].Achievement.ID)
	assert.Equal(t, "a", merged[2].Achievement.ID)
	assert.Equal(t, "c", merged[3].Achievement.ID)
}

func TestMergeByStrategy_StableForEqualPriorities(t *testing.T) {
	byStrategy := map[Reason][]Recommended{
		ReasonAlmostComplete: {
			recommended("a", ReasonAlmostComplete, 7),
		},
		ReasonNextTier: {
			recommended("b", ReasonNextTier, 7),
			recommended("c", ReasonNextTier, 7),
		},
	}

	merged := MergeByStrategy(DefaultStrategyOrder(), byStrategy)

	assert.Equal(t, []string{"a", "b", "c"}, []string{
		merged[0].Achievement.ID,
		merged[1].Achievement.ID,
		merged[2].Achievement.ID,
	})
}

func TestMergeByStrategy_EmptyInput(t *testing.T) {
	merged := MergeByStrategy(DefaultStrategyOrder(), nil)
	assert.Empty(t, merged)
}
