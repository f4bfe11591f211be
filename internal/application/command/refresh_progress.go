// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/application/saga"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH PROGRESS COMMAND
// Фоновый пересчёт прогресса: один пользователь или пакет активных
// пользователей. Команду дёргает планировщик; она же - точка входа для
// ручного пересчёта после импорта истории тренировок.
// ══════════════════════════════════════════════════════════════════════════════

// RefreshProgressCommand содержит параметры пересчёта.
type RefreshProgressCommand struct {
	// UserID - пересчитать одного пользователя (пустая строка = пакетный
	// режим по активным пользователям).
	UserID string

	// ActiveWindowDays - окно активности для пакетного режима.
	ActiveWindowDays int
}

// Validate проверяет корректность параметров.
func (c *RefreshProgressCommand) Validate() error {
	if c.UserID == "" && c.ActiveWindowDays <= 0 {
		c.ActiveWindowDays = 7
	}
	if c.ActiveWindowDays > 90 {
		return errors.New("active window must not exceed 90 days")
	}
	return nil
}

// RefreshProgressResult - итог пересчёта.
type RefreshProgressResult struct {
	// Users - сколько пользователей пересчитано.
	Users int

	// Completed - сколько достижений завершилось за прогон.
	Completed int

	// FailedUsers - пользователи, у которых пересчёт упал целиком.
	FailedUsers []string

	// Duration - длительность прогона.
	Duration time.Duration
}

// RefreshProgressHandler обрабатывает команды пересчёта прогресса.
type RefreshProgressHandler struct {
	users  user.UserStore
	flow   *saga.ProgressFlowSaga
	logger *slog.Logger
}

// NewRefreshProgressHandler создаёт обработчик пересчёта.
func NewRefreshProgressHandler(
	users user.UserStore,
	flow *saga.ProgressFlowSaga,
	logger *slog.Logger,
) *RefreshProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshProgressHandler{
		users:  users,
		flow:   flow,
		logger: logger,
	}
}

// Handle выполняет пересчёт. В пакетном режиме падение одного
// пользователя не останавливает остальных.
func (h *RefreshProgressHandler) Handle(ctx context.Context, cmd RefreshProgressCommand) (*RefreshProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("progress", "RefreshProgress", shared.ErrInvalidInput,
			"invalid command", err)
	}

	started := time.Now()
	result := &RefreshProgressResult{}

	userIDs := []string{cmd.UserID}
	if cmd.UserID == "" {
		ids, err := h.users.ActiveUserIDs(ctx, cmd.ActiveWindowDays)
		if err != nil {
			return nil, shared.WrapError("progress", "RefreshProgress", shared.ErrExternalService,
				"list active users", err)
		}
		userIDs = ids
	}

	for _, id := range userIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		flowResult, err := h.flow.Execute(ctx, saga.ProgressFlowInput{UserID: id})
		if err != nil {
			result.FailedUsers = append(result.FailedUsers, id)
			h.logger.Warn("progress refresh failed for user",
				slog.String("user_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}

		result.Users++
		result.Completed += len(flowResult.CompletedNow)
		if flowResult.Degraded() {
			h.logger.Warn("progress refresh degraded",
				slog.String("user_id", id),
				slog.Int("failed_achievements", len(flowResult.Failed)),
			)
		}
	}

	result.Duration = time.Since(started)
	return result, nil
}
