package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCriteria_Validate(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		valid    bool
	}{
		{
			name: "valid session count",
			criteria: Criteria{
				Type:       CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 10},
			},
			valid: true,
		},
		{
			name: "zero target rejected",
			criteria: Criteria{
				Type:       CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 0},
			},
			valid: false,
		},
		{
			name: "type and payload mismatch rejected",
			criteria: Criteria{
				Type:       CriteriaStreak,
				Conditions: SessionCountConditions{Target: 10},
			},
			valid: false,
		},
		{
			name: "missing conditions rejected",
			criteria: Criteria{
				Type: CriteriaStreak,
			},
			valid: false,
		},
		{
			name: "unknown window rejected",
			criteria: Criteria{
				Type:       CriteriaTimeBased,
				Conditions: TimeBasedConditions{Target: 5, Window: "noon"},
			},
			valid: false,
		},
		{
			name: "seasonal without months rejected",
			criteria: Criteria{
				Type:       CriteriaSeasonalSessions,
				Conditions: SeasonalSessionsConditions{Target: 5},
			},
			valid: false,
		},
		{
			name: "valid date range",
			criteria: Criteria{
				Type: CriteriaDateRangeSessions,
				Conditions: DateRangeSessionsConditions{
					Target:     5,
					StartMonth: time.November,
					StartDay:   20,
					EndMonth:   time.January,
					EndDay:     5,
				},
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDifficultyLevelCount_EffectiveLevels(t *testing.T) {
	// Explicit levels take precedence over the default hard tiers.
	explicit := DifficultyLevelCountConditions{Target: 5, Levels: []int{3}}
	assert.Equal(t, []int{3}, explicit.EffectiveLevels())

	implicit := DifficultyLevelCountConditions{Target: 5}
	assert.Equal(t, []int{4, 5}, implicit.EffectiveLevels())
}

func TestDateRangeSessions_ResolveWindow_WrapsYear(t *testing.T) {
	cond := DateRangeSessionsConditions{
		Target:     10,
		StartMonth: time.November,
		StartDay:   20,
		EndMonth:   time.January,
		EndDay:     5,
	}

	// Inside the window, before new year: the window ends next year.
	today := time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)
	start, end := cond.ResolveWindow(today)
	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, time.November, start.Month())
	assert.Equal(t, 2026, end.Year())
	assert.Equal(t, time.January, end.Month())
	assert.True(t, cond.ContainsDate(today))

	// Inside the window, after new year: the window started last year.
	today = time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC)
	start, end = cond.ResolveWindow(today)
	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, 2026, end.Year())
	assert.True(t, cond.ContainsDate(today))

	// Outside the window entirely.
	today = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.False(t, cond.ContainsDate(today))
}

func TestTimeWindow_Contains(t *testing.T) {
	assert.True(t, WindowMorning.Contains(8))
	assert.False(t, WindowMorning.Contains(9))
	assert.True(t, WindowEvening.Contains(21))
	assert.False(t, WindowEvening.Contains(20))
}
