package achievement

import (
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// Каталог достижений статичен: загружается один раз при старте процесса,
// валидируется и дальше передаётся потребителям только для чтения.
// Никаких мутабельных синглтонов.
// ══════════════════════════════════════════════════════════════════════════════

// Catalog - порт каталога достижений, только для чтения.
type Catalog interface {
	// All возвращает все определения, включая отключённые.
	All() []Achievement

	// Active возвращает все не отключённые определения.
	Active() []Achievement

	// Get возвращает определение по идентификатору.
	Get(id string) (Achievement, bool)

	// AvailableTo возвращает определения, доступные пользователю:
	// не отключённые и (не премиум или пользователь премиум).
	AvailableTo(isPremium bool) []Achievement

	// RecommendableFor возвращает кандидатов для рекомендаций:
	// доступные пользователю, не скрытые и ещё не полученные.
	// Скрытые и полученные достижения не доходят до вычислителя.
	RecommendableFor(isPremium bool, earned map[string]bool) []Achievement
}

// Available - предикат доступности достижения пользователю.
func Available(a Achievement, isPremium bool) bool {
	return !a.IsDisabled && (!a.IsPremium || isPremium)
}

// ─────────────────────────────────────────────────────────────────────────────
// In-memory реализация
// ─────────────────────────────────────────────────────────────────────────────

// InMemoryCatalog - неизменяемый каталог в памяти.
type InMemoryCatalog struct {
	ordered []Achievement
	byID    map[string]Achievement
}

// NewInMemoryCatalog создаёт каталог из набора определений.
// Каждое определение валидируется; дубликаты идентификаторов - ошибка.
func NewInMemoryCatalog(definitions []Achievement) (*InMemoryCatalog, error) {
	c := &InMemoryCatalog{
		ordered: make([]Achievement, 0, len(definitions)),
		byID:    make(map[string]Achievement, len(definitions)),
	}

	for _, def := range definitions {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byID[def.ID]; exists {
			return nil, shared.WrapError("achievement", "Load", shared.ErrAlreadyExists,
				"duplicate achievement id "+def.ID, nil)
		}
		c.ordered = append(c.ordered, def)
		c.byID[def.ID] = def
	}

	return c, nil
}

// All возвращает все определения.
func (c *InMemoryCatalog) All() []Achievement {
	out := make([]Achievement, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Active возвращает все не отключённые определения.
func (c *InMemoryCatalog) Active() []Achievement {
	out := make([]Achievement, 0, len(c.ordered))
	for _, a := range c.ordered {
		if !a.IsDisabled {
			out = append(out, a)
		}
	}
	return out
}

// Get возвращает определение по идентификатору.
func (c *InMemoryCatalog) Get(id string) (Achievement, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// AvailableTo возвращает определения, доступные пользователю.
func (c *InMemoryCatalog) AvailableTo(isPremium bool) []Achievement {
	out := make([]Achievement, 0, len(c.ordered))
	for _, a := range c.ordered {
		if Available(a, isPremium) {
			out = append(out, a)
		}
	}
	return out
}

// RecommendableFor возвращает кандидатов для рекомендаций.
func (c *InMemoryCatalog) RecommendableFor(isPremium bool, earned map[string]bool) []Achievement {
	out := make([]Achievement, 0, len(c.ordered))
	for _, a := range c.ordered {
		if !Available(a, isPremium) {
			continue
		}
		if a.IsSecret || earned[a.ID] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Встроенные определения
// Репрезентативный набор, покрывающий все типы критериев, редкости
// и категории. Полный продакшен-набор живёт у контент-команды.
// ─────────────────────────────────────────────────────────────────────────────

// BuiltinDefinitions возвращает встроенный набор определений достижений.
func BuiltinDefinitions() []Achievement {
	return []Achievement{
		// Вехи
		{
			ID: "first-steps", Name: "First Steps",
			Category: CategoryMilestones, Rarity: RarityCommon, Points: 10,
			Criteria: Criteria{Type: CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 1}},
		},
		{
			ID: "regular", Name: "Regular",
			Category: CategoryMilestones, Rarity: RarityCommon, Points: 25,
			Criteria: Criteria{Type: CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 10}},
		},
		{
			ID: "half-century", Name: "Half Century",
			Category: CategoryMilestones, Rarity: RarityUncommon, Points: 75,
			Criteria: Criteria{Type: CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 50}},
		},
		{
			ID: "centurion", Name: "Centurion",
			Category: CategoryMilestones, Rarity: RarityRare, Points: 200,
			Criteria: Criteria{Type: CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 100}},
		},
		{
			ID: "cardio-devotee", Name: "Cardio Devotee",
			Category: CategoryMilestones, Rarity: RarityUncommon, Points: 60,
			Criteria: Criteria{Type: CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 25, ExerciseCategory: "cardio"}},
			RelatedExerciseCategories: []string{"cardio"},
		},
		{
			ID: "iron-habit", Name: "Iron Habit",
			Category: CategoryMilestones, Rarity: RarityUncommon, Points: 60,
			Criteria: Criteria{Type: CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 25, ExerciseCategory: "strength"}},
			RelatedExerciseCategories: []string{"strength"},
		},
		{
			ID: "bend-dont-break", Name: "Bend, Don't Break",
			Category: CategoryMilestones, Rarity: RarityCommon, Points: 30,
			Criteria: Criteria{Type: CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 10, ExerciseCategory: "flexibility"}},
			RelatedExerciseCategories: []string{"flexibility"},
		},

		// Регулярность
		{
			ID: "week-of-fire", Name: "Week of Fire",
			Category: CategoryConsistency, Rarity: RarityCommon, Points: 40,
			Criteria: Criteria{Type: CriteriaStreak,
				Conditions: StreakConditions{TargetDays: 7}},
		},
		{
			ID: "iron-will", Name: "Iron Will",
			Category: CategoryConsistency, Rarity: RarityRare, Points: 250,
			Criteria: Criteria{Type: CriteriaStreak,
				Conditions: StreakConditions{TargetDays: 30}},
		},
		{
			ID: "back-to-back", Name: "Back to Back",
			Category: CategoryConsistency, Rarity: RarityCommon, Points: 20,
			Criteria: Criteria{Type: CriteriaConsecutiveDaily,
				Conditions: ConsecutiveDailyConditions{TargetDays: 3}},
		},
		{
			ID: "daily-dozen", Name: "Daily Dozen",
			Category: CategoryConsistency, Rarity: RarityEpic, Points: 400,
			Criteria: Criteria{Type: CriteriaConsecutiveDaily,
				Conditions: ConsecutiveDailyConditions{TargetDays: 12}},
		},

		// Разгон
		{
			ID: "climbing-higher", Name: "Climbing Higher",
			Category: CategoryMomentum, Rarity: RarityUncommon, Points: 70,
			Criteria: Criteria{Type: CriteriaProgressiveDifficulty,
				Conditions: ProgressiveDifficultyConditions{Target: 5}},
		},
		{
			ID: "relentless", Name: "Relentless",
			Category: CategoryMomentum, Rarity: RarityEpic, Points: 350,
			Criteria: Criteria{Type: CriteriaProgressiveDifficulty,
				Conditions: ProgressiveDifficultyConditions{Target: 15}},
		},
		{
			ID: "heavy-hitter", Name: "Heavy Hitter",
			Category: CategoryMomentum, Rarity: RarityRare, Points: 150,
			Criteria: Criteria{Type: CriteriaDifficultyLevelCount,
				Conditions: DifficultyLevelCountConditions{Target: 10}},
			RelatedExerciseCategories: []string{"strength"},
		},

		// Результативность
		{
			ID: "record-setter", Name: "Record Setter",
			Category: CategoryPerformance, Rarity: RarityCommon, Points: 30,
			Criteria: Criteria{Type: CriteriaPersonalBest,
				Conditions: PersonalBestConditions{}},
		},
		{
			ID: "on-a-roll", Name: "On a Roll",
			Category: CategoryPerformance, Rarity: RarityRare, Points: 180,
			Criteria: Criteria{Type: CriteriaPersonalBestsCount,
				Conditions: PersonalBestsCountConditions{Target: 5, TrailingDays: 30}},
		},
		{
			ID: "marathon-session", Name: "Marathon Session",
			Category: CategoryPerformance, Rarity: RarityUncommon, Points: 90,
			Criteria: Criteria{Type: CriteriaDuration,
				Conditions: DurationConditions{TargetSeconds: 3600}},
			RelatedExerciseCategories: []string{"cardio"},
		},
		{
			ID: "early-bird", Name: "Early Bird",
			Category: CategoryPerformance, Rarity: RarityUncommon, Points: 50,
			Criteria: Criteria{Type: CriteriaTimeBased,
				Conditions: TimeBasedConditions{Target: 10, Window: WindowMorning}},
		},
		{
			ID: "night-owl", Name: "Night Owl",
			Category: CategoryPerformance, Rarity: RarityUncommon, Points: 50,
			Criteria: Criteria{Type: CriteriaTimeBased,
				Conditions: TimeBasedConditions{Target: 10, Window: WindowEvening}},
		},

		// Особые
		{
			ID: "summer-grind", Name: "Summer Grind",
			Category: CategorySpecial, Rarity: RarityUncommon, Points: 80,
			Criteria: Criteria{Type: CriteriaSeasonalSessions,
				Conditions: SeasonalSessionsConditions{Target: 15,
					Months: []time.Month{time.June, time.July, time.August}}},
		},
		{
			ID: "holiday-hustle", Name: "Holiday Hustle",
			Category: CategorySpecial, Rarity: RarityRare, Points: 120,
			Criteria: Criteria{Type: CriteriaDateRangeSessions,
				Conditions: DateRangeSessionsConditions{Target: 10,
					StartMonth: time.November, StartDay: 20,
					EndMonth: time.January, EndDay: 5}},
		},
		{
			ID: "new-year-surge", Name: "New Year Surge",
			Category: CategorySpecial, Rarity: RarityCommon, Points: 35,
			Criteria: Criteria{Type: CriteriaSeasonalSessions,
				Conditions: SeasonalSessionsConditions{Target: 8,
					Months: []time.Month{time.January}}},
		},
		{
			ID: "inner-circle", Name: "Inner Circle",
			Category: CategorySocial, Rarity: RarityRare, Points: 150,
			Criteria: Criteria{Type: CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 40}},
			IsSecret: true,
		},
		{
			ID: "elite-program", Name: "Elite Program",
			Category: CategoryPerformance, Rarity: RarityEpic, Points: 500,
			Criteria: Criteria{Type: CriteriaDifficultyLevelCount,
				Conditions: DifficultyLevelCountConditions{Target: 30, Levels: []int{5}}},
			IsPremium:                 true,
			RelatedExerciseCategories: []string{"strength", "cardio"},
		},
	}
}
