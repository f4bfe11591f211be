package activity

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// ПОРТЫ ХРАНИЛИЩ
// Реализуются слоем persistence; движок зависит только от интерфейсов.
// ══════════════════════════════════════════════════════════════════════════════

// SessionStore - порт чтения истории тренировок.
type SessionStore interface {
	// ListSessions возвращает завершённые тренировки пользователя,
	// проходящие фильтр. Нулевой фильтр возвращает всю историю.
	ListSessions(ctx context.Context, userID string, filter SessionFilter) ([]Session, error)
}

// StreakStore - порт чтения предвычисленного счётчика серии.
type StreakStore interface {
	// CurrentStreak возвращает текущую серию дней пользователя.
	// Отсутствие записи - это 0, а не ошибка.
	CurrentStreak(ctx context.Context, userID string) (int, error)
}

// ExerciseStore - порт чтения справочника упражнений.
type ExerciseStore interface {
	// IDsForDifficultyLevels возвращает идентификаторы упражнений
	// с уровнями сложности из списка.
	IDsForDifficultyLevels(ctx context.Context, levels []int) ([]string, error)
}
