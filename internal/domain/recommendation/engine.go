package recommendation

import (
	"math"
	"sort"
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION ENGINE
// Четыре независимые стратегии генерации кандидатов. Каждая стратегия
// детерминирована и помечает кандидатов своей причиной и приоритетом.
// Слияние выполняется явной функцией MergeByStrategy.
// ══════════════════════════════════════════════════════════════════════════════

// Приоритеты и лимиты стратегий.
const (
	// almostCompleteLimit - сколько кандидатов берёт стратегия almost_complete.
	almostCompleteLimit = 3

	// nextTierLimit - сколько кандидатов берёт стратегия next_tier.
	nextTierLimit = 2

	// nextTierPriority - фиксированный приоритет next_tier.
	nextTierPriority = 7

	// categoryDiversityPriority - фиксированный приоритет category_diversity.
	categoryDiversityPriority = 5

	// seasonalTimelyPriority - фиксированный приоритет seasonal_timely.
	seasonalTimelyPriority = 8

	// nextTierThreshold - сколько достижений уровня редкости нужно
	// собрать, прежде чем целью станет следующий уровень.
	nextTierThreshold = 5
)

// Config задаёт параметры движка рекомендаций.
type Config struct {
	// Order - порядок стратегий при слиянии.
	Order []Reason

	// EnableAlmostComplete - включена ли стратегия almost_complete.
	EnableAlmostComplete bool

	// EnableNextTier - включена ли стратегия next_tier.
	EnableNextTier bool

	// EnableCategoryDiversity - включена ли стратегия category_diversity.
	EnableCategoryDiversity bool

	// EnableSeasonalTimely - включена ли стратегия seasonal_timely.
	EnableSeasonalTimely bool
}

// DefaultConfig возвращает конфигурацию по умолчанию: все стратегии
// включены, порядок слияния стандартный.
func DefaultConfig() Config {
	return Config{
		Order:                   DefaultStrategyOrder(),
		EnableAlmostComplete:    true,
		EnableNextTier:          true,
		EnableCategoryDiversity: true,
		EnableSeasonalTimely:    true,
	}
}

// Input - вход движка рекомендаций.
type Input struct {
	// Candidates - отфильтрованный набор достижений: доступные
	// пользователю, не скрытые, не полученные.
	Candidates []achievement.Achievement

	// Progress - прогресс по кандидатам, ключ - идентификатор достижения.
	Progress map[string]achievement.Progress

	// User - контекст пользователя на момент вызова.
	User user.Context
}

// Engine генерирует рекомендации из прогресса и контекста пользователя.
type Engine struct {
	catalog achievement.Catalog
	config  Config
}

// NewEngine создаёт движок рекомендаций.
func NewEngine(catalog achievement.Catalog, config Config) *Engine {
	if len(config.Order) == 0 {
		config.Order = DefaultStrategyOrder()
	}
	return &Engine{
		catalog: catalog,
		config:  config,
	}
}

// Generate запускает стратегии, сливает кандидатов и возвращает не
// больше limit рекомендаций, отсортированных по убыванию приоритета.
func (e *Engine) Generate(input Input, limit int) []Recommended {
	byStrategy := map[Reason][]Recommended{}

	if e.config.EnableAlmostComplete {
		byStrategy[ReasonAlmostComplete] = e.almostComplete(input)
	}
	if e.config.EnableNextTier {
		byStrategy[ReasonNextTier] = e.nextTier(input)
	}
	if e.config.EnableCategoryDiversity {
		byStrategy[ReasonCategoryDiversity] = e.categoryDiversity(input)
	}
	if e.config.EnableSeasonalTimely {
		byStrategy[ReasonSeasonalTimely] = e.seasonalTimely(input)
	}

	merged := MergeByStrategy(e.config.Order, byStrategy)

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// ─────────────────────────────────────────────────────────────────────────────
// Стратегия 1: almost_complete
// Кандидаты с прогрессом 50-99%, по убыванию процента, топ-3.
// Приоритет растёт с процентом: 95% -> 10, 50% -> 5.
// ─────────────────────────────────────────────────────────────────────────────

func (e *Engine) almostComplete(input Input) []Recommended {
	var out []Recommended

	for _, a := range input.Candidates {
		p, ok := input.Progress[a.ID]
		if !ok {
			continue
		}
		if p.Percentage < 50 || p.Percentage >= 100 {
			continue
		}
		out = append(out, Recommended{
			Achievement: a,
			Progress:    p,
			Reason:      ReasonAlmostComplete,
			Priority:    almostCompletePriority(p.Percentage),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Progress.Percentage > out[j].Progress.Percentage
	})

	if len(out) > almostCompleteLimit {
		out = out[:almostCompleteLimit]
	}
	return out
}

// almostCompletePriority вычисляет приоритет по проценту выполнения.
func almostCompletePriority(percentage float64) int {
	priority := 10 - int(math.Floor((100-percentage)/10))
	if priority < MinPriority {
		priority = MinPriority
	}
	if priority > MaxPriority {
		priority = MaxPriority
	}
	return priority
}

// ─────────────────────────────────────────────────────────────────────────────
// Стратегия 2: next_tier
// Целевая редкость - первая, по которой собрано меньше пяти достижений,
// в строгом порядке Common, Uncommon, Rare; иначе Epic.
// ─────────────────────────────────────────────────────────────────────────────

func (e *Engine) nextTier(input Input) []Recommended {
	target := e.targetRarity(input.User.EarnedAchievementIDs)

	var out []Recommended
	for _, a := range input.Candidates {
		if a.Rarity != target {
			continue
		}
		out = append(out, Recommended{
			Achievement: a,
			Progress:    input.Progress[a.ID],
			Reason:      ReasonNextTier,
			Priority:    nextTierPriority,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Progress.Percentage > out[j].Progress.Percentage
	})

	if len(out) > nextTierLimit {
		out = out[:nextTierLimit]
	}
	return out
}

// targetRarity выбирает целевую редкость по количеству полученных
// достижений на каждом уровне.
func (e *Engine) targetRarity(earned map[string]bool) achievement.Rarity {
	counts := map[achievement.Rarity]int{}
	for id := range earned {
		if a, ok := e.catalog.Get(id); ok {
			counts[a.Rarity]++
		}
	}

	for _, r := range []achievement.Rarity{
		achievement.RarityCommon,
		achievement.RarityUncommon,
		achievement.RarityRare,
	} {
		if counts[r] < nextTierThreshold {
			return r
		}
	}
	return achievement.RarityEpic
}

// ─────────────────────────────────────────────────────────────────────────────
// Стратегия 3: category_diversity
// Берём категорию упражнений с минимальной ненулевой частотой и
// рекомендуем одно связанное с ней достижение. Без истории тренировок
// стратегия молчит.
// ─────────────────────────────────────────────────────────────────────────────

func (e *Engine) categoryDiversity(input Input) []Recommended {
	category := activity.LeastFrequentCategory(input.User.CategoryFrequency)
	if category == "" {
		return nil
	}

	for _, a := range input.Candidates {
		if !a.RelatedTo(category) {
			continue
		}
		return []Recommended{{
			Achievement: a,
			Progress:    input.Progress[a.ID],
			Reason:      ReasonCategoryDiversity,
			Priority:    categoryDiversityPriority,
		}}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Стратегия 4: seasonal_timely
// Сезонные достижения, чьё окно актуально прямо сейчас: список месяцев
// содержит текущий месяц, либо окно с учётом перехода через новый год
// содержит сегодняшнюю дату.
// ─────────────────────────────────────────────────────────────────────────────

func (e *Engine) seasonalTimely(input Input) []Recommended {
	today := input.User.Today

	for _, a := range input.Candidates {
		if !timelyNow(a.Criteria, today) {
			continue
		}
		return []Recommended{{
			Achievement: a,
			Progress:    input.Progress[a.ID],
			Reason:      ReasonSeasonalTimely,
			Priority:    seasonalTimelyPriority,
		}}
	}
	return nil
}

// timelyNow проверяет, актуально ли сезонное окно критерия для момента today.
func timelyNow(c achievement.Criteria, today time.Time) bool {
	switch cond := c.Conditions.(type) {
	case achievement.SeasonalSessionsConditions:
		return cond.ContainsMonth(today.Month())
	case achievement.DateRangeSessionsConditions:
		return cond.ContainsDate(today)
	default:
		return false
	}
}
