package achievement

import (
	"fmt"
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT PROGRESS
// Нормализованная запись прогресса: (current, required) -> процент,
// флаг завершения и человекочитаемая оценка "сколько осталось".
// ══════════════════════════════════════════════════════════════════════════════

// Progress представляет прогресс пользователя по одному достижению.
type Progress struct {
	// AchievementID - идентификатор достижения.
	AchievementID string `json:"achievement_id"`

	// Current - текущее значение критерия (>= 0).
	Current float64 `json:"current"`

	// Required - целевое значение критерия (> 0).
	Required float64 `json:"required"`

	// Percentage - процент выполнения, отсечённый в [0, 100].
	Percentage float64 `json:"percentage"`

	// IsComplete - достижение выполнено (Percentage >= 100).
	IsComplete bool `json:"is_complete"`

	// EstimatedCompletion - текстовая оценка до завершения.
	// Пустая строка, когда достижение выполнено.
	EstimatedCompletion string `json:"estimated_completion,omitempty"`

	// LastUpdated - время последнего пересчёта.
	LastUpdated time.Time `json:"last_updated"`
}

// NewProgress вычисляет нормализованный прогресс по достижению.
// Отрицательный current отсекается до нуля.
func NewProgress(achievementID string, criteria Criteria, current float64, now time.Time) Progress {
	if current < 0 {
		current = 0
	}

	required := criteria.Required()
	percentage := math.Min(current/required*100, 100)
	isComplete := percentage >= 100

	p := Progress{
		AchievementID: achievementID,
		Current:       current,
		Required:      required,
		Percentage:    percentage,
		IsComplete:    isComplete,
		LastUpdated:   now,
	}

	if !isComplete {
		p.EstimatedCompletion = estimateCompletion(criteria, current)
	}

	return p
}

// ZeroProgress возвращает нулевой прогресс для достижения.
// Используется при деградации, когда вычисление критерия упало:
// один сбойный критерий не должен прерывать пересчёт остальных.
func ZeroProgress(achievementID string, criteria Criteria, now time.Time) Progress {
	return NewProgress(achievementID, criteria, 0, now)
}

// estimateCompletion строит оценку "сколько осталось" в единицах,
// свойственных типу критерия.
func estimateCompletion(criteria Criteria, current float64) string {
	remaining := int(math.Ceil(criteria.Required() - current))
	if remaining < 1 {
		remaining = 1
	}

	switch cond := criteria.Conditions.(type) {
	case StreakConditions, ConsecutiveDailyConditions:
		return fmt.Sprintf("%d more days", remaining)

	case PersonalBestConditions:
		return "Beat your personal best"

	case PersonalBestsCountConditions:
		return fmt.Sprintf("%d more personal bests", remaining)

	case DurationConditions:
		return fmt.Sprintf("Complete 1 session of %d+ seconds", cond.TargetSeconds)

	case ProgressiveDifficultyConditions:
		return fmt.Sprintf("%d more sessions with increased difficulty", remaining)

	case TimeBasedConditions:
		return fmt.Sprintf("%d more %s sessions", remaining, cond.Window)

	default:
		// session_count, difficulty_level_count, seasonal_sessions,
		// date_range_sessions
		return fmt.Sprintf("%d more sessions", remaining)
	}
}
