package postgres

import (
	"context"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StreakRepository implements activity.StreakStore for PostgreSQL.
type StreakRepository struct {
	conn *Connection
}

// NewStreakRepository creates a new StreakRepository.
func NewStreakRepository(conn *Connection) *StreakRepository {
	return &StreakRepository{conn: conn}
}

// CurrentStreak returns the user's current daily streak. A missing row
// means the user never worked out: streak zero, not an error.
func (r *StreakRepository) CurrentStreak(ctx context.Context, userID string) (int, error) {
	var streak int
	err := r.conn.QueryRow(ctx,
		`SELECT current_streak FROM streaks WHERE user_id = $1`,
		userID,
	).Scan(&streak)
	if err != nil {
		if IsNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load streak: %w", err)
	}
	return streak, nil
}

// UpsertStreak updates the user's streak counters after a session.
func (r *StreakRepository) UpsertStreak(ctx context.Context, userID string, current, longest int, lastSession time.Time) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO streaks (user_id, current_streak, longest_streak, last_session_date, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = GREATEST(streaks.longest_streak, EXCLUDED.longest_streak),
			last_session_date = EXCLUDED.last_session_date,
			updated_at = NOW()
	`, userID, current, longest, lastSession)
	if err != nil {
		return fmt.Errorf("failed to upsert streak: %w", err)
	}
	return nil
}
