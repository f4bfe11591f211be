// Package achievement содержит ядро движка достижений: каталог определений,
// вычисление прогресса по типам критериев и генерацию рекомендаций.
package achievement

import (
	"fmt"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATEGORY (Категория достижения)
// ══════════════════════════════════════════════════════════════════════════════

// Category представляет категорию достижения.
type Category string

const (
	// CategoryMilestones - накопительные вехи (количество тренировок).
	CategoryMilestones Category = "milestones"

	// CategoryConsistency - регулярность (серии, ежедневные тренировки).
	CategoryConsistency Category = "consistency"

	// CategoryMomentum - разгон (прогрессия сложности, обгон себя).
	CategoryMomentum Category = "momentum"

	// CategoryPerformance - результативность (личные рекорды, длительность).
	CategoryPerformance Category = "performance"

	// CategorySocial - социальные достижения.
	CategorySocial Category = "social"

	// CategorySpecial - сезонные и особые достижения.
	CategorySpecial Category = "special"
)

// IsValid проверяет корректность категории.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMilestones, CategoryConsistency, CategoryMomentum,
		CategoryPerformance, CategorySocial, CategorySpecial:
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// RARITY (Редкость достижения, упорядоченная)
// ══════════════════════════════════════════════════════════════════════════════

// Rarity представляет редкость достижения. Значения упорядочены:
// Common < Uncommon < Rare < Epic.
type Rarity int

const (
	// RarityCommon - обычное достижение.
	RarityCommon Rarity = iota

	// RarityUncommon - необычное достижение.
	RarityUncommon

	// RarityRare - редкое достижение.
	RarityRare

	// RarityEpic - эпическое достижение.
	RarityEpic
)

// String возвращает строковое представление редкости.
func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "common"
	case RarityUncommon:
		return "uncommon"
	case RarityRare:
		return "rare"
	case RarityEpic:
		return "epic"
	default:
		return "unknown"
	}
}

// IsValid проверяет корректность редкости.
func (r Rarity) IsValid() bool {
	return r >= RarityCommon && r <= RarityEpic
}

// AllRarities возвращает все уровни редкости в порядке возрастания.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic}
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT (Определение достижения)
// ══════════════════════════════════════════════════════════════════════════════

// Achievement представляет статичное определение достижения.
// Определения неизменяемы: загружаются один раз при старте процесса
// и никогда не мутируются.
type Achievement struct {
	// ID - уникальный идентификатор достижения.
	ID string

	// Name - отображаемое имя.
	Name string

	// Category - категория достижения.
	Category Category

	// Rarity - редкость достижения.
	Rarity Rarity

	// Points - очки за разблокировку.
	Points int

	// Criteria - типизированный критерий разблокировки.
	Criteria Criteria

	// IsPremium - доступно только премиум-подписчикам.
	IsPremium bool

	// IsSecret - скрытое достижение, никогда не рекомендуется.
	IsSecret bool

	// IsDisabled - отключено, не участвует ни в каких вычислениях.
	IsDisabled bool

	// RelatedExerciseCategories - категории упражнений, связанные
	// с достижением (для стратегии category_diversity).
	RelatedExerciseCategories []string
}

// Validate проверяет корректность определения на этапе загрузки каталога.
func (a Achievement) Validate() error {
	if a.ID == "" {
		return shared.WrapError("achievement", "Validate", shared.ErrEmptyValue,
			"achievement id cannot be empty", nil)
	}
	if a.Name == "" {
		return shared.WrapError("achievement", "Validate", shared.ErrEmptyValue,
			fmt.Sprintf("achievement %q has empty name", a.ID), nil)
	}
	if !a.Category.IsValid() {
		return shared.WrapError("achievement", "Validate", shared.ErrInvalidInput,
			fmt.Sprintf("achievement %q has unknown category %q", a.ID, a.Category), nil)
	}
	if !a.Rarity.IsValid() {
		return shared.WrapError("achievement", "Validate", shared.ErrInvalidInput,
			fmt.Sprintf("achievement %q has unknown rarity %d", a.ID, a.Rarity), nil)
	}
	if a.Points < 0 {
		return shared.WrapError("achievement", "Validate", shared.ErrNegativeValue,
			fmt.Sprintf("achievement %q has negative points", a.ID), nil)
	}
	if err := a.Criteria.Validate(); err != nil {
		return shared.WrapError("achievement", "Validate", shared.ErrInvalidEntity,
			fmt.Sprintf("achievement %q has invalid criteria", a.ID), err)
	}
	return nil
}

// RelatedTo проверяет, связано ли достижение с категорией упражнений.
func (a Achievement) RelatedTo(exerciseCategory string) bool {
	for _, c := range a.RelatedExerciseCategories {
		if c == exerciseCategory {
			return true
		}
	}
	return false
}
