// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/application/saga"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Возвращает прогресс пользователя по достижениям: сколько сделано,
// сколько осталось, и оценку завершения. Это витрина мотивации:
// пользователь видит не сухие цифры, а путь к следующей награде.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressQuery содержит параметры запроса прогресса.
type GetProgressQuery struct {
	// UserID - идентификатор пользователя.
	UserID string

	// AchievementID - запросить прогресс только по одному достижению
	// (пустая строка = по всем доступным).
	AchievementID string

	// SkipCache - пересчитать прогресс, игнорируя кеш.
	SkipCache bool
}

// Validate проверяет корректность параметров.
func (q *GetProgressQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user_id must be provided")
	}
	return nil
}

// ProgressDTO - прогресс по одному достижению вместе с его определением.
type ProgressDTO struct {
	// AchievementID - идентификатор достижения.
	AchievementID string `json:"achievement_id"`

	// Name - название достижения.
	Name string `json:"name"`

	// Category - категория достижения.
	Category string `json:"category"`

	// Rarity - редкость достижения.
	Rarity string `json:"rarity"`

	// Points - очки за получение.
	Points int `json:"points"`

	// Progress - рассчитанный прогресс.
	Progress achievement.Progress `json:"progress"`
}

// ProgressListDTO - итог запроса прогресса.
type ProgressListDTO struct {
	// UserID - идентификатор пользователя.
	UserID string `json:"user_id"`

	// Achievements - прогресс по достижениям, отсортирован по убыванию
	// процента выполнения.
	Achievements []ProgressDTO `json:"achievements"`

	// FromCache - данные пришли из кеша без пересчёта.
	FromCache bool `json:"from_cache"`

	// Degraded - часть достижений не удалось рассчитать.
	Degraded bool `json:"degraded"`

	// GeneratedAt - момент формирования ответа.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetProgressHandler обрабатывает запросы прогресса.
type GetProgressHandler struct {
	catalog achievement.Catalog
	cache   achievement.ProgressCache
	flow    *saga.ProgressFlowSaga
}

// NewGetProgressHandler создаёт обработчик запроса прогресса.
func NewGetProgressHandler(
	catalog achievement.Catalog,
	cache achievement.ProgressCache,
	flow *saga.ProgressFlowSaga,
) *GetProgressHandler {
	return &GetProgressHandler{
		catalog: catalog,
		cache:   cache,
		flow:    flow,
	}
}

// Handle выполняет запрос. Сначала пробует кеш; при промахе или явном
// SkipCache запускает полный пересчёт через сагу.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*ProgressListDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("progress", "GetProgress", shared.ErrInvalidInput,
			"invalid query", err)
	}

	progress, fromCache, degraded, err := h.loadProgress(ctx, q)
	if err != nil {
		return nil, err
	}

	dto := &ProgressListDTO{
		UserID:      q.UserID,
		FromCache:   fromCache,
		Degraded:    degraded,
		GeneratedAt: timeutil.Now(),
	}

	for id, p := range progress {
		if q.AchievementID != "" && id != q.AchievementID {
			continue
		}
		a, ok := h.catalog.Get(id)
		if !ok {
			continue
		}
		dto.Achievements = append(dto.Achievements, ProgressDTO{
			AchievementID: id,
			Name:          a.Name,
			Category:      string(a.Category),
			Rarity:        a.Rarity.String(),
			Points:        a.Points,
			Progress:      p,
		})
	}

	sort.SliceStable(dto.Achievements, func(i, j int) bool {
		if dto.Achievements[i].Progress.Percentage != dto.Achievements[j].Progress.Percentage {
			return dto.Achievements[i].Progress.Percentage > dto.Achievements[j].Progress.Percentage
		}
		return dto.Achievements[i].AchievementID < dto.Achievements[j].AchievementID
	})

	if q.AchievementID != "" && len(dto.Achievements) == 0 {
		return nil, shared.ErrAchievementNotFound
	}
	return dto, nil
}

// loadProgress возвращает прогресс из кеша или пересчитывает его.
func (h *GetProgressHandler) loadProgress(ctx context.Context, q GetProgressQuery) (map[string]achievement.Progress, bool, bool, error) {
	if !q.SkipCache && h.cache != nil {
		cached, err := h.cache.GetAll(ctx, q.UserID)
		if err == nil && len(cached) > 0 {
			return cached, true, false, nil
		}
	}

	result, err := h.flow.Execute(ctx, saga.ProgressFlowInput{UserID: q.UserID})
	if err != nil {
		return nil, false, false, err
	}
	return result.Progress, false, result.Degraded(), nil
}
