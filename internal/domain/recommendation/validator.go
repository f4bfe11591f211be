package recommendation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATOR
// Финальная проверка списка рекомендаций перед выдачей. Валидатор никогда
// не возвращает ошибку: нарушения фиксируются в отчёте, а нарушившие
// рекомендации выбрасываются из результата.
// ══════════════════════════════════════════════════════════════════════════════

// Issue - одно зафиксированное нарушение.
type Issue struct {
	// AchievementID - достижение, на котором найдено нарушение.
	AchievementID string `json:"achievement_id"`

	// Message - описание нарушения.
	Message string `json:"message"`
}

// ValidationReport - итог проверки списка рекомендаций.
type ValidationReport struct {
	// ID - идентификатор отчёта для корреляции в логах.
	ID string `json:"id"`

	// CheckedAt - момент проверки.
	CheckedAt time.Time `json:"checked_at"`

	// Checked - сколько рекомендаций было на входе.
	Checked int `json:"checked"`

	// Dropped - сколько рекомендаций выброшено.
	Dropped int `json:"dropped"`

	// Issues - найденные нарушения.
	Issues []Issue `json:"issues,omitempty"`
}

// Clean сообщает, прошёл ли список проверку без нарушений.
func (r ValidationReport) Clean() bool {
	return len(r.Issues) == 0
}

// Validate проверяет готовый список рекомендаций для пользователя uctx
// и возвращает очищенный список вместе с отчётом.
//
// Проверяемые инварианты:
//   - секретные достижения не рекомендуются;
//   - премиальные достижения не рекомендуются бесплатным пользователям;
//   - отключённые достижения не рекомендуются;
//   - уже полученные достижения не рекомендуются;
//   - достижение встречается в списке не больше одного раза;
//   - процент прогресса в диапазоне [0, 100];
//   - приоритет в диапазоне [1, 10];
//   - причина - одна из известных стратегий.
//
// Нарушившие рекомендации не только попадают в отчёт, но и выбрасываются
// из результата: вызывающий код получает уже очищенный список.
func Validate(recs []Recommended, uctx user.Context, now time.Time) ([]Recommended, ValidationReport) {
	report := ValidationReport{
		ID:        uuid.NewString(),
		CheckedAt: now,
		Checked:   len(recs),
	}

	seen := map[string]bool{}
	valid := make([]Recommended, 0, len(recs))

	for _, r := range recs {
		if msg := violation(r, uctx, seen); msg != "" {
			report.Issues = append(report.Issues, Issue{
				AchievementID: r.Achievement.ID,
				Message:       msg,
			})
			continue
		}
		seen[r.Achievement.ID] = true
		valid = append(valid, r)
	}

	report.Dropped = report.Checked - len(valid)
	return valid, report
}

// violation возвращает описание первого нарушения или пустую строку.
func violation(r Recommended, uctx user.Context, seen map[string]bool) string {
	a := r.Achievement

	switch {
	case a.IsSecret:
		return "secret achievement must not be recommended"
	case a.IsDisabled:
		return "disabled achievement must not be recommended"
	case a.IsPremium && !uctx.IsPremium:
		return "premium achievement recommended to a free user"
	case uctx.HasEarned(a.ID):
		return "already earned achievement must not be recommended"
	case seen[a.ID]:
		return "duplicate achievement in recommendation list"
	case r.Progress.Percentage < 0 || r.Progress.Percentage > 100:
		return fmt.Sprintf("progress percentage %.1f outside [0, 100]", r.Progress.Percentage)
	case r.Priority < MinPriority || r.Priority > MaxPriority:
		return fmt.Sprintf("priority %d outside [%d, %d]", r.Priority, MinPriority, MaxPriority)
	case !r.Reason.IsValid():
		return fmt.Sprintf("unknown recommendation reason %q", r.Reason)
	}
	return ""
}
