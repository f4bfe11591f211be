package user

import (
	"context"
)

// UserStore - порт чтения данных пользователя.
type UserStore interface {
	// SubscriptionTier возвращает уровень подписки пользователя.
	SubscriptionTier(ctx context.Context, userID string) (SubscriptionTier, error)

	// EarnedAchievementIDs возвращает множество идентификаторов
	// полученных достижений.
	EarnedAchievementIDs(ctx context.Context, userID string) (map[string]bool, error)

	// ActiveUserIDs возвращает пользователей с тренировками за
	// последние days дней. Используется фоновым пересчётом прогресса.
	ActiveUserIDs(ctx context.Context, days int) ([]string, error)
}
