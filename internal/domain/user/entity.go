// Package user содержит доменную модель пользователя, видимую движку
// достижений: уровень подписки и контекст для генерации рекомендаций.
package user

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBSCRIPTION TIER
// ══════════════════════════════════════════════════════════════════════════════

// SubscriptionTier представляет уровень подписки пользователя.
type SubscriptionTier string

const (
	// TierFree - бесплатный уровень.
	TierFree SubscriptionTier = "free"

	// TierPremium - премиум-подписка.
	TierPremium SubscriptionTier = "premium"
)

// IsPremium проверяет, что уровень - премиум.
func (t SubscriptionTier) IsPremium() bool {
	return t == TierPremium
}

// IsValid проверяет корректность уровня.
func (t SubscriptionTier) IsValid() bool {
	return t == TierFree || t == TierPremium
}

// ══════════════════════════════════════════════════════════════════════════════
// USER CONTEXT
// Производный контекст одного вызова движка. Не персистится.
// ══════════════════════════════════════════════════════════════════════════════

// Context содержит срез состояния пользователя на момент вызова.
type Context struct {
	// UserID - идентификатор пользователя.
	UserID string

	// EarnedAchievementIDs - множество уже полученных достижений.
	EarnedAchievementIDs map[string]bool

	// IsPremium - активна ли премиум-подписка.
	IsPremium bool

	// CategoryFrequency - гистограмма частот тренировок по категориям
	// упражнений.
	CategoryFrequency map[string]int

	// Today - текущая дата в локальной зоне пользователя.
	Today time.Time
}

// HasEarned проверяет, получено ли достижение.
func (c Context) HasEarned(achievementID string) bool {
	return c.EarnedAchievementIDs[achievementID]
}

// HasHistory проверяет, есть ли у пользователя история тренировок.
func (c Context) HasHistory() bool {
	return len(c.CategoryFrequency) > 0
}
