// Package recommendation реализует генерацию рекомендаций "что дальше":
// четыре независимые стратегии, явное слияние с дедупликацией и
// пост-проверку инвариантов результата.
package recommendation

import (
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// REASON (Причина рекомендации)
// ══════════════════════════════════════════════════════════════════════════════

// Reason представляет стратегию, породившую рекомендацию.
type Reason string

const (
	// ReasonAlmostComplete - достижение почти выполнено (50-99%).
	ReasonAlmostComplete Reason = "almost_complete"

	// ReasonNextTier - следующий уровень редкости для прокачки коллекции.
	ReasonNextTier Reason = "next_tier"

	// ReasonCategoryDiversity - выравнивание перекоса по категориям.
	ReasonCategoryDiversity Reason = "category_diversity"

	// ReasonSeasonalTimely - сезонное/своевременное достижение.
	ReasonSeasonalTimely Reason = "seasonal_timely"
)

// IsValid проверяет корректность причины.
func (r Reason) IsValid() bool {
	switch r {
	case ReasonAlmostComplete, ReasonNextTier, ReasonCategoryDiversity, ReasonSeasonalTimely:
		return true
	}
	return false
}

// DefaultStrategyOrder возвращает порядок стратегий при слиянии.
// Порядок значим: при дедупликации выигрывает более поздняя стратегия.
func DefaultStrategyOrder() []Reason {
	return []Reason{
		ReasonAlmostComplete,
		ReasonNextTier,
		ReasonCategoryDiversity,
		ReasonSeasonalTimely,
	}
}

// Границы приоритета рекомендаций.
const (
	// MinPriority - минимальный приоритет.
	MinPriority = 1

	// MaxPriority - максимальный приоритет.
	MaxPriority = 10
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDED ACHIEVEMENT
// ══════════════════════════════════════════════════════════════════════════════

// Recommended представляет одну рекомендацию для пользователя.
type Recommended struct {
	// Achievement - рекомендуемое достижение.
	Achievement achievement.Achievement

	// Progress - текущий прогресс по нему.
	Progress achievement.Progress

	// Reason - стратегия, породившая рекомендацию.
	Reason Reason

	// Priority - приоритет в диапазоне [1, 10].
	Priority int
}
