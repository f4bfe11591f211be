package achievement

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CRITERIA TYPES
// Каждый тип критерия выбирает алгоритм вычисления прогресса.
// Форма полезной нагрузки (conditions) фиксирована для каждого типа
// и валидируется при загрузке каталога, а не при вычислении.
// ══════════════════════════════════════════════════════════════════════════════

// CriteriaType представляет тип критерия достижения.
type CriteriaType string

const (
	// CriteriaSessionCount - количество завершённых тренировок
	// (опционально в одной категории упражнений).
	CriteriaSessionCount CriteriaType = "session_count"

	// CriteriaStreak - текущая серия дней по предвычисленному счётчику.
	CriteriaStreak CriteriaType = "streak"

	// CriteriaDuration - хотя бы одна тренировка заданной длительности.
	CriteriaDuration CriteriaType = "duration"

	// CriteriaConsecutiveDaily - подряд идущие календарные дни с тренировками.
	CriteriaConsecutiveDaily CriteriaType = "consecutive_daily_sessions"

	// CriteriaPersonalBest - последняя тренировка была личным рекордом.
	CriteriaPersonalBest CriteriaType = "personal_best"

	// CriteriaPersonalBestsCount - количество тренировок с личными рекордами.
	CriteriaPersonalBestsCount CriteriaType = "personal_bests_count"

	// CriteriaDifficultyLevelCount - тренировки на упражнениях заданных
	// уровней сложности.
	CriteriaDifficultyLevelCount CriteriaType = "difficulty_level_count"

	// CriteriaSeasonalSessions - тренировки в заданные месяцы текущего года.
	CriteriaSeasonalSessions CriteriaType = "seasonal_sessions"

	// CriteriaDateRangeSessions - тренировки в окне месяц/день, которое
	// может переходить через новый год.
	CriteriaDateRangeSessions CriteriaType = "date_range_sessions"

	// CriteriaProgressiveDifficulty - пары соседних тренировок со строгим
	// ростом сложности.
	CriteriaProgressiveDifficulty CriteriaType = "progressive_difficulty"

	// CriteriaTimeBased - тренировки в именованном окне суток.
	CriteriaTimeBased CriteriaType = "time_based"
)

// IsValid проверяет корректность типа критерия.
func (t CriteriaType) IsValid() bool {
	switch t {
	case CriteriaSessionCount, CriteriaStreak, CriteriaDuration,
		CriteriaConsecutiveDaily, CriteriaPersonalBest, CriteriaPersonalBestsCount,
		CriteriaDifficultyLevelCount, CriteriaSeasonalSessions,
		CriteriaDateRangeSessions, CriteriaProgressiveDifficulty, CriteriaTimeBased:
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// TIME WINDOWS
// ══════════════════════════════════════════════════════════════════════════════

// TimeWindow представляет именованное окно суток для критерия time_based.
type TimeWindow string

const (
	// WindowMorning - утренние тренировки (час < 9).
	WindowMorning TimeWindow = "morning"

	// WindowEvening - вечерние тренировки (час >= 21).
	WindowEvening TimeWindow = "evening"
)

// Contains проверяет, попадает ли локальный час в окно.
// Нераспознанное окно не содержит ничего.
func (w TimeWindow) Contains(hour int) bool {
	switch w {
	case WindowMorning:
		return hour < 9
	case WindowEvening:
		return hour >= 21
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CRITERIA (размеченное объединение)
// ══════════════════════════════════════════════════════════════════════════════

// Conditions - типизированная полезная нагрузка критерия.
// По одной реализации на каждый CriteriaType.
type Conditions interface {
	// CriteriaType возвращает тип, которому принадлежит нагрузка.
	CriteriaType() CriteriaType

	// Required возвращает целевое значение для расчёта процента (> 0).
	Required() float64

	// Validate проверяет форму нагрузки при загрузке каталога.
	Validate() error
}

// Criteria представляет критерий достижения: явный тег плюс
// типизированная нагрузка, форма которой фиксирована для тега.
type Criteria struct {
	// Type - тег, выбирающий алгоритм вычисления.
	Type CriteriaType

	// Conditions - нагрузка, соответствующая тегу.
	Conditions Conditions
}

// Validate проверяет согласованность тега и нагрузки.
func (c Criteria) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("unknown criteria type %q", c.Type)
	}
	if c.Conditions == nil {
		return errors.New("criteria conditions cannot be nil")
	}
	if c.Conditions.CriteriaType() != c.Type {
		return fmt.Errorf("criteria tag %q does not match conditions type %q",
			c.Type, c.Conditions.CriteriaType())
	}
	if err := c.Conditions.Validate(); err != nil {
		return err
	}
	if c.Conditions.Required() <= 0 {
		return fmt.Errorf("criteria %q required value must be positive", c.Type)
	}
	return nil
}

// Required возвращает целевое значение критерия.
func (c Criteria) Required() float64 {
	if c.Conditions == nil {
		return 0
	}
	return c.Conditions.Required()
}

// ─────────────────────────────────────────────────────────────────────────────
// session_count
// ─────────────────────────────────────────────────────────────────────────────

// SessionCountConditions - нагрузка критерия session_count.
type SessionCountConditions struct {
	// Target - требуемое количество тренировок.
	Target int

	// ExerciseCategory - фильтр по категории упражнений.
	// Пустая строка означает: считать все тренировки.
	ExerciseCategory string
}

func (c SessionCountConditions) CriteriaType() CriteriaType { return CriteriaSessionCount }
func (c SessionCountConditions) Required() float64          { return float64(c.Target) }

// Validate проверяет нагрузку.
func (c SessionCountConditions) Validate() error {
	if c.Target <= 0 {
		return errors.New("session_count: target must be positive")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// streak
// ─────────────────────────────────────────────────────────────────────────────

// StreakConditions - нагрузка критерия streak.
type StreakConditions struct {
	// TargetDays - требуемая длина серии в днях.
	TargetDays int
}

func (c StreakConditions) CriteriaType() CriteriaType { return CriteriaStreak }
func (c StreakConditions) Required() float64          { return float64(c.TargetDays) }

// Validate проверяет нагрузку.
func (c StreakConditions) Validate() error {
	if c.TargetDays <= 0 {
		return errors.New("streak: target days must be positive")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// duration
// ─────────────────────────────────────────────────────────────────────────────

// DurationConditions - нагрузка критерия duration.
// Критерий бинарный: 1, если есть хотя бы одна тренировка
// длительностью >= TargetSeconds, иначе 0.
type DurationConditions struct {
	// TargetSeconds - минимальная длительность тренировки в секундах.
	TargetSeconds int
}

func (c DurationConditions) CriteriaType() CriteriaType { return CriteriaDuration }
func (c DurationConditions) Required() float64          { return 1 }

// Validate проверяет нагрузку.
func (c DurationConditions) Validate() error {
	if c.TargetSeconds <= 0 {
		return errors.New("duration: target seconds must be positive")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// consecutive_daily_sessions
// ─────────────────────────────────────────────────────────────────────────────

// ConsecutiveDailyConditions - нагрузка критерия consecutive_daily_sessions.
type ConsecutiveDailyConditions struct {
	// TargetDays - требуемое количество подряд идущих дней.
	TargetDays int
}

func (c ConsecutiveDailyConditions) CriteriaType() CriteriaType { return CriteriaConsecutiveDaily }
func (c ConsecutiveDailyConditions) Required() float64          { return float64(c.TargetDays) }

// Validate проверяет нагрузку.
func (c ConsecutiveDailyConditions) Validate() error {
	if c.TargetDays <= 0 {
		return errors.New("consecutive_daily_sessions: target days must be positive")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// personal_best
// ─────────────────────────────────────────────────────────────────────────────

// PersonalBestConditions - нагрузка критерия personal_best.
// Критерий бинарный и не имеет параметров: 1, если последняя
// тренировка была личным рекордом.
type PersonalBestConditions struct{}

func (c PersonalBestConditions) CriteriaType() CriteriaType { return CriteriaPersonalBest }
func (c PersonalBestConditions) Required() float64          { return 1 }

// Validate проверяет нагрузку.
func (c PersonalBestConditions) Validate() error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// personal_bests_count
// ─────────────────────────────────────────────────────────────────────────────

// PersonalBestsCountConditions - нагрузка критерия personal_bests_count.
type PersonalBestsCountConditions struct {
	// Target - требуемое количество тренировок с личными рекордами.
	Target int

	// TrailingDays - ограничение скользящим окном в днях.
	// 0 означает: считать за всё время. Типичное значение - 30.
	TrailingDays int
}

func (c PersonalBestsCountConditions) CriteriaType() CriteriaType { return CriteriaPersonalBestsCount }
func (c PersonalBestsCountConditions) Required() float64          { return float64(c.Target) }

// Validate проверяет нагрузку.
func (c PersonalBestsCountConditions) Validate() error {
	if c.Target <= 0 {
		return errors.New("personal_bests_count: target must be positive")
	}
	if c.TrailingDays < 0 {
		return errors.New("personal_bests_count: trailing days cannot be negative")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// difficulty_level_count
// ─────────────────────────────────────────────────────────────────────────────

// DefaultDifficultyLevels - уровни сложности по умолчанию для
// критерия difficulty_level_count.
var DefaultDifficultyLevels = []int{4, 5}

// DifficultyLevelCountConditions - нагрузка критерия difficulty_level_count.
type DifficultyLevelCountConditions struct {
	// Target - требуемое количество тренировок.
	Target int

	// Levels - уровни сложности упражнений.
	// Пустой список означает уровни по умолчанию {4, 5}.
	Levels []int
}

func (c DifficultyLevelCountConditions) CriteriaType() CriteriaType {
	return CriteriaDifficultyLevelCount
}
func (c DifficultyLevelCountConditions) Required() float64 { return float64(c.Target) }

// EffectiveLevels возвращает уровни с учётом значения по умолчанию.
func (c DifficultyLevelCountConditions) EffectiveLevels() []int {
	if len(c.Levels) == 0 {
		return DefaultDifficultyLevels
	}
	return c.Levels
}

// Validate проверяет нагрузку.
func (c DifficultyLevelCountConditions) Validate() error {
	if c.Target <= 0 {
		return errors.New("difficulty_level_count: target must be positive")
	}
	for _, lvl := range c.Levels {
		if lvl < 1 || lvl > 5 {
			return fmt.Errorf("difficulty_level_count: level %d out of range [1,5]", lvl)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// seasonal_sessions
// ─────────────────────────────────────────────────────────────────────────────

// SeasonalSessionsConditions - нагрузка критерия seasonal_sessions.
type SeasonalSessionsConditions struct {
	// Target - требуемое количество тренировок.
	Target int

	// Months - месяцы текущего года, которые засчитываются.
	// Пустой список даёт текущее значение 0 при вычислении.
	Months []time.Month
}

func (c SeasonalSessionsConditions) CriteriaType() CriteriaType { return CriteriaSeasonalSessions }
func (c SeasonalSessionsConditions) Required() float64          { return float64(c.Target) }

// ContainsMonth проверяет, входит ли месяц в список.
func (c SeasonalSessionsConditions) ContainsMonth(m time.Month) bool {
	for _, month := range c.Months {
		if month == m {
			return true
		}
	}
	return false
}

// Validate проверяет нагрузку.
func (c SeasonalSessionsConditions) Validate() error {
	if c.Target <= 0 {
		return errors.New("seasonal_sessions: target must be positive")
	}
	for _, m := range c.Months {
		if m < time.January || m > time.December {
			return fmt.Errorf("seasonal_sessions: invalid month %d", m)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// date_range_sessions
// ─────────────────────────────────────────────────────────────────────────────

// DateRangeSessionsConditions - нагрузка критерия date_range_sessions.
// Окно задаётся парами месяц/день и может переходить через новый год
// (StartMonth > EndMonth, например 20 ноября - 5 января).
type DateRangeSessionsConditions struct {
	// Target - требуемое количество тренировок.
	Target int

	// StartMonth, StartDay - начало окна.
	StartMonth time.Month
	StartDay   int

	// EndMonth, EndDay - конец окна.
	EndMonth time.Month
	EndDay   int
}

func (c DateRangeSessionsConditions) CriteriaType() CriteriaType { return CriteriaDateRangeSessions }
func (c DateRangeSessionsConditions) Required() float64          { return float64(c.Target) }

// Wraps сообщает, переходит ли окно через новый год.
func (c DateRangeSessionsConditions) Wraps() bool {
	return c.StartMonth > c.EndMonth
}

// ResolveWindow возвращает конкретные границы окна для момента today.
// Для окна с переходом через новый год пара лет выбирается по тому,
// с какой стороны перехода находится today: поздняя часть года даёт
// [Y, Y+1], ранняя - [Y-1, Y]. Окно без перехода целиком лежит в
// текущем году. Начало - локальная полночь, конец - конец дня.
func (c DateRangeSessionsConditions) ResolveWindow(today time.Time) (start, end time.Time) {
	loc := today.Location()
	startYear := today.Year()
	endYear := today.Year()

	if c.Wraps() {
		if today.Month() >= c.StartMonth {
			endYear = startYear + 1
		} else {
			startYear = endYear - 1
		}
	}

	start = time.Date(startYear, c.StartMonth, c.StartDay, 0, 0, 0, 0, loc)
	end = time.Date(endYear, c.EndMonth, c.EndDay, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
	return start, end
}

// ContainsDate проверяет, попадает ли момент today в разрешённое окно.
func (c DateRangeSessionsConditions) ContainsDate(today time.Time) bool {
	start, end := c.ResolveWindow(today)
	return !today.Before(start) && !today.After(end)
}

// Validate проверяет нагрузку.
func (c DateRangeSessionsConditions) Validate() error {
	if c.Target <= 0 {
		return errors.New("date_range_sessions: target must be positive")
	}
	if c.StartMonth < time.January || c.StartMonth > time.December {
		return fmt.Errorf("date_range_sessions: invalid start month %d", c.StartMonth)
	}
	if c.EndMonth < time.January || c.EndMonth > time.December {
		return fmt.Errorf("date_range_sessions: invalid end month %d", c.EndMonth)
	}
	if c.StartDay < 1 || c.StartDay > 31 {
		return fmt.Errorf("date_range_sessions: invalid start day %d", c.StartDay)
	}
	if c.EndDay < 1 || c.EndDay > 31 {
		return fmt.Errorf("date_range_sessions: invalid end day %d", c.EndDay)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// progressive_difficulty
// ─────────────────────────────────────────────────────────────────────────────

// ProgressiveDifficultyConditions - нагрузка критерия progressive_difficulty.
type ProgressiveDifficultyConditions struct {
	// Target - требуемое количество пар со строгим ростом сложности.
	Target int
}

func (c ProgressiveDifficultyConditions) CriteriaType() CriteriaType {
	return CriteriaProgressiveDifficulty
}
func (c ProgressiveDifficultyConditions) Required() float64 { return float64(c.Target) }

// Validate проверяет нагрузку.
func (c ProgressiveDifficultyConditions) Validate() error {
	if c.Target <= 0 {
		return errors.New("progressive_difficulty: target must be positive")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// time_based
// ─────────────────────────────────────────────────────────────────────────────

// TimeBasedConditions - нагрузка критерия time_based.
type TimeBasedConditions struct {
	// Target - требуемое количество тренировок в окне.
	Target int

	// Window - именованное окно суток.
	Window TimeWindow
}

func (c TimeBasedConditions) CriteriaType() CriteriaType { return CriteriaTimeBased }
func (c TimeBasedConditions) Required() float64          { return float64(c.Target) }

// Validate проверяет нагрузку.
func (c TimeBasedConditions) Validate() error {
	if c.Target <= 0 {
		return errors.New("time_based: target must be positive")
	}
	if c.Window != WindowMorning && c.Window != WindowEvening {
		return fmt.Errorf("time_based: unknown window %q", c.Window)
	}
	return nil
}
