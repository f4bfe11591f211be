// Package activity содержит доменную модель тренировочной активности:
// завершённые тренировки пользователя и чистые вычисления над их историей.
package activity

import (
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION (Завершённая тренировка)
// ══════════════════════════════════════════════════════════════════════════════

// Session представляет завершённую тренировку пользователя.
type Session struct {
	// ID - уникальный идентификатор тренировки.
	ID string

	// UserID - идентификатор пользователя.
	UserID string

	// ExerciseID - идентификатор упражнения.
	ExerciseID string

	// ExerciseCategory - категория упражнения (cardio, strength, ...).
	ExerciseCategory string

	// CompletedAt - время завершения в локальной зоне пользователя.
	CompletedAt time.Time

	// DurationSeconds - длительность тренировки в секундах.
	DurationSeconds int

	// Difficulty - уровень сложности упражнения (1-5),
	// денормализуется хранилищем при чтении.
	Difficulty int

	// WasPersonalBest - тренировка была отмечена как личный рекорд.
	WasPersonalBest bool
}

// SessionFilter задаёт фильтры выборки тренировок.
// Нулевые значения означают отсутствие фильтра.
type SessionFilter struct {
	// ExerciseCategory - только тренировки этой категории упражнений.
	ExerciseCategory string

	// From - только тренировки, завершённые не раньше этого момента.
	From time.Time

	// To - только тренировки, завершённые не позже этого момента.
	To time.Time
}

// Matches проверяет, проходит ли тренировка фильтр.
func (f SessionFilter) Matches(s Session) bool {
	if f.ExerciseCategory != "" && s.ExerciseCategory != f.ExerciseCategory {
		return false
	}
	if !f.From.IsZero() && s.CompletedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && s.CompletedAt.After(f.To) {
		return false
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// ВЫЧИСЛЕНИЯ НАД ИСТОРИЕЙ
// Чистые функции над списком тренировок. Все обходы детерминированы.
// ══════════════════════════════════════════════════════════════════════════════

// sameDay проверяет, что два момента приходятся на один календарный день
// (граница - локальная полночь).
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// dayStart возвращает локальную полночь дня момента t.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ConsecutiveDailySessions вычисляет длину серии подряд идущих календарных
// дней с тренировками, идя от самой свежей тренировки назад.
//
// Правила обхода:
//   - та же календарная дата, что и предыдущая - серия не растёт, обход
//     продолжается;
//   - разрыв ровно в один день - серия растёт на единицу;
//   - разрыв больше одного дня - обход останавливается.
//
// Пустая история даёт 0, единственная тренировка - 1.
func ConsecutiveDailySessions(sessions []Session) int {
	if len(sessions) == 0 {
		return 0
	}

	// От новых к старым.
	sorted := make([]Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
	})

	streak := 1
	prev := dayStart(sorted[0].CompletedAt)

	for _, s := range sorted[1:] {
		day := dayStart(s.CompletedAt)
		if sameDay(day, prev) {
			continue
		}

		gap := int(prev.Sub(day).Hours() / 24)
		if gap == 1 {
			streak++
			prev = day
			continue
		}

		// Разрыв больше одного дня - серия закончилась.
		break
	}

	return streak
}

// ProgressiveDifficultyCount считает пары соседних тренировок
// (в порядке от старых к новым), в которых сложность строго выросла.
// Меньше двух тренировок дают 0.
func ProgressiveDifficultyCount(sessions []Session) int {
	if len(sessions) < 2 {
		return 0
	}

	sorted := make([]Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.Before(sorted[j].CompletedAt)
	})

	count := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Difficulty > sorted[i-1].Difficulty {
			count++
		}
	}

	return count
}

// MostRecent возвращает самую свежую тренировку.
// Второе значение false, если история пуста.
func MostRecent(sessions []Session) (Session, bool) {
	if len(sessions) == 0 {
		return Session{}, false
	}

	latest := sessions[0]
	for _, s := range sessions[1:] {
		if s.CompletedAt.After(latest.CompletedAt) {
			latest = s
		}
	}
	return latest, true
}

// CategoryHistogram строит гистограмму частот тренировок по категориям
// упражнений. Тренировки с пустой категорией не учитываются.
func CategoryHistogram(sessions []Session) map[string]int {
	hist := make(map[string]int)
	for _, s := range sessions {
		if s.ExerciseCategory == "" {
			continue
		}
		hist[s.ExerciseCategory]++
	}
	return hist
}

// LeastFrequentCategory возвращает категорию с минимальной ненулевой
// частотой. Для детерминизма равные частоты разрешаются в пользу
// лексикографически меньшего имени категории. Пустая гистограмма
// даёт пустую строку.
func LeastFrequentCategory(hist map[string]int) string {
	best := ""
	bestCount := 0

	for category, count := range hist {
		if count <= 0 {
			continue
		}
		if best == "" || count < bestCount || (count == bestCount && category < best) {
			best = category
			bestCount = count
		}
	}

	return best
}
