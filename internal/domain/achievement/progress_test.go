package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewProgress_Percentage(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	criteria := Criteria{
		Type:       CriteriaSessionCount,
		Conditions: SessionCountConditions{Target: 30},
	}

	p := NewProgress("thirty-sessions", criteria, 10, now)

	assert.InDelta(t, 33.3, p.Percentage, 0.05)
	assert.False(t, p.IsComplete)
	assert.Equal(t, "20 more sessions", p.EstimatedCompletion)
	assert.Equal(t, now, p.LastUpdated)
}

func TestNewProgress_CapsAtHundred(t *testing.T) {
	criteria := Criteria{
		Type:       CriteriaSessionCount,
		Conditions: SessionCountConditions{Target: 10},
	}

	p := NewProgress("ten-sessions", criteria, 25, time.Now())

	assert.Equal(t, 100.0, p.Percentage)
	assert.True(t, p.IsComplete)
	assert.Empty(t, p.EstimatedCompletion)
}

func TestNewProgress_NegativeCurrentClamped(t *testing.T) {
	criteria := Criteria{
		Type:       CriteriaStreak,
		Conditions: StreakConditions{TargetDays: 7},
	}

	p := NewProgress("week-streak", criteria, -3, time.Now())

	assert.Equal(t, 0.0, p.Current)
	assert.Equal(t, 0.0, p.Percentage)
	assert.False(t, p.IsComplete)
}

func TestNewProgress_EstimateByCriteriaType(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		criteria Criteria
		current  float64
		want     string
	}{
		{
			name: "streak counts days",
			criteria: Criteria{
				Type:       CriteriaStreak,
				Conditions: StreakConditions{TargetDays: 7},
			},
			current: 4,
			want:    "3 more days",
		},
		{
			name: "personal best is binary",
			criteria: Criteria{
				Type:       CriteriaPersonalBest,
				Conditions: PersonalBestConditions{},
			},
			current: 0,
			want:    "Beat your personal best",
		},
		{
			name: "duration names the threshold",
			criteria: Criteria{
				Type:       CriteriaDuration,
				Conditions: DurationConditions{TargetSeconds: 1800},
			},
			current: 0,
			want:    "Complete 1 session of 1800+ seconds",
		},
		{
			name: "time based names the window",
			criteria: Criteria{
				Type:       CriteriaTimeBased,
				Conditions: TimeBasedConditions{Target: 10, Window: WindowMorning},
			},
			current: 6,
			want:    "4 more morning sessions",
		},
		{
			name: "fractional remainder rounds up",
			criteria: Criteria{
				Type:       CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 10},
			},
			current: 7.5,
			want:    "3 more sessions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress("a", tt.criteria, tt.current, now)
			assert.Equal(t, tt.want, p.EstimatedCompletion)
		})
	}
}

func TestZeroProgress(t *testing.T) {
	now := time.Now()
	criteria := Criteria{
		Type:       CriteriaSessionCount,
		Conditions: SessionCountConditions{Target: 50},
	}

	p := ZeroProgress("fifty-sessions", criteria, now)

	assert.Equal(t, 0.0, p.Current)
	assert.Equal(t, 50.0, p.Required)
	assert.Equal(t, 0.0, p.Percentage)
	assert.False(t, p.IsComplete)
}
