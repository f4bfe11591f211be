package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/application/saga"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/recommendation"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECOMMENDATIONS QUERY
// Собирает персональные рекомендации достижений: свежий прогресс,
// контекст пользователя, четыре стратегии, слияние и финальная проверка
// инвариантов. Любой сбой конвейера деградирует в пустой список:
// рекомендации - не критичная функция, и лучше промолчать, чем упасть.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultRecommendationLimit - сколько рекомендаций отдаём по умолчанию.
	DefaultRecommendationLimit = 5

	// MaxRecommendationLimit - верхняя граница запрошенного лимита.
	MaxRecommendationLimit = 10
)

// RecommendationLimits задаёт пределы количества рекомендаций в выдаче.
type RecommendationLimits struct {
	// Default - сколько рекомендаций отдаём, если лимит не задан.
	Default int

	// Max - верхняя граница запрошенного лимита.
	Max int
}

// DefaultRecommendationLimits возвращает пределы по умолчанию.
func DefaultRecommendationLimits() RecommendationLimits {
	return RecommendationLimits{
		Default: DefaultRecommendationLimit,
		Max:     MaxRecommendationLimit,
	}
}

// normalize заменяет некорректные значения пределами по умолчанию.
func (l *RecommendationLimits) normalize() {
	if l.Default <= 0 {
		l.Default = DefaultRecommendationLimit
	}
	if l.Max <= 0 {
		l.Max = MaxRecommendationLimit
	}
	if l.Default > l.Max {
		l.Default = l.Max
	}
}

// clamp приводит запрошенный лимит к допустимому значению.
func (l RecommendationLimits) clamp(limit int) int {
	if limit <= 0 {
		return l.Default
	}
	if limit > l.Max {
		return l.Max
	}
	return limit
}

// GetRecommendationsQuery содержит параметры запроса рекомендаций.
type GetRecommendationsQuery struct {
	// UserID - идентификатор пользователя.
	UserID string

	// Limit - сколько рекомендаций вернуть (0 = по умолчанию,
	// значения сверх предела отсекаются обработчиком).
	Limit int
}

// Validate проверяет корректность параметров.
func (q *GetRecommendationsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user_id must be provided")
	}
	return nil
}

// RecommendationDTO - одна рекомендация для выдачи.
type RecommendationDTO struct {
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

	// Reason - стратегия, предложившая достижение.
	Reason string `json:"reason"`

	// Priority - приоритет рекомендации, 1-10.
	Priority int `json:"priority"`

	// Progress - текущий прогресс по достижению.
	Progress achievement.Progress `json:"progress"`
}

// RecommendationsDTO - итог запроса рекомендаций.
type RecommendationsDTO struct {
	// UserID - идентификатор пользователя.
	UserID string `json:"user_id"`

	// Recommendations - отсортированный список рекомендаций.
	Recommendations []RecommendationDTO `json:"recommendations"`

	// ReportID - идентификатор отчёта валидации для корреляции в логах.
	ReportID string `json:"report_id,omitempty"`

	// GeneratedAt - момент формирования ответа.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetRecommendationsHandler обрабатывает запросы рекомендаций.
type GetRecommendationsHandler struct {
	catalog achievement.Catalog
	flow    *saga.ProgressFlowSaga
	engine  *recommendation.Engine
	limits  RecommendationLimits
	logger  *slog.Logger
}

// NewGetRecommendationsHandler создаёт обработчик запроса рекомендаций.
func NewGetRecommendationsHandler(
	catalog achievement.Catalog,
	flow *saga.ProgressFlowSaga,
	engine *recommendation.Engine,
	limits RecommendationLimits,
	logger *slog.Logger,
) *GetRecommendationsHandler {
	limits.normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &GetRecommendationsHandler{
		catalog: catalog,
		flow:    flow,
		engine:  engine,
		limits:  limits,
		logger:  logger,
	}
}

// Handle выполняет конвейер рекомендаций. Ошибки конвейера логируются и
// превращаются в пустой список; ошибкой наружу остаётся только
// некорректный запрос.
func (h *GetRecommendationsHandler) Handle(ctx context.Context, q GetRecommendationsQuery) (*RecommendationsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("recommendation", "GetRecommendations", shared.ErrInvalidInput,
			"invalid query", err)
	}

	dto := &RecommendationsDTO{
		UserID:          q.UserID,
		Recommendations: []RecommendationDTO{},
		GeneratedAt:     timeutil.Now(),
	}

	// Свежий прогресс и контекст пользователя из одного прогона саги.
	result, err := h.flow.Execute(ctx, saga.ProgressFlowInput{UserID: q.UserID})
	if err != nil {
		h.logger.Warn("recommendation pipeline degraded to empty list",
			slog.String("user_id", q.UserID),
			slog.String("error", err.Error()),
		)
		return dto, nil
	}

	candidates := h.catalog.RecommendableFor(result.User.IsPremium, result.User.EarnedAchievementIDs)

	recs := h.engine.Generate(recommendation.Input{
		Candidates: candidates,
		Progress:   result.Progress,
		User:       result.User,
	}, h.limits.clamp(q.Limit))

	valid, report := recommendation.Validate(recs, result.User, timeutil.Now())
	if !report.Clean() {
		h.logger.Warn("recommendations dropped by validator",
			slog.String("user_id", q.UserID),
			slog.String("report_id", report.ID),
			slog.Int("dropped", report.Dropped),
		)
	}

	dto.ReportID = report.ID
	for _, r := range valid {
		dto.Recommendations = append(dto.Recommendations, RecommendationDTO{
			AchievementID: r.Achievement.ID,
			Name:          r.Achievement.Name,
			Category:      string(r.Achievement.Category),
			Rarity:        r.Achievement.Rarity.String(),
			Points:        r.Achievement.Points,
			Reason:        string(r.Reason),
			Priority:      r.Priority,
			Progress:      r.Progress,
		})
	}
	return dto, nil
}
