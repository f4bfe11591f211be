package achievement

import (
	"context"
	"time"
)

// ProgressCache - порт кеша рассчитанного прогресса.
//
// Кеш ускоряет чтение: расчёт прогресса требует полной истории
// тренировок, а читается прогресс на порядки чаще, чем меняется.
// Отсутствие записи - не ошибка, а сигнал пересчитать.
type ProgressCache interface {
	// Get возвращает закешированный прогресс пользователя по достижению.
	// Второе значение false, если записи нет или она истекла.
	Get(ctx context.Context, userID, achievementID string) (Progress, bool, error)

	// GetAll возвращает весь закешированный прогресс пользователя.
	GetAll(ctx context.Context, userID string) (map[string]Progress, error)

	// Put сохраняет прогресс с TTL.
	Put(ctx context.Context, userID string, progress Progress, ttl time.Duration) error

	// PutAll сохраняет прогресс по нескольким достижениям за один вызов.
	PutAll(ctx context.Context, userID string, progress map[string]Progress, ttl time.Duration) error

	// Invalidate удаляет весь закешированный прогресс пользователя.
	Invalidate(ctx context.Context, userID string) error
}
