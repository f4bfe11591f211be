package postgres

import (
	"context"
	"fmt"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.UserStore for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// SubscriptionTier returns the user's subscription tier.
func (r *UserRepository) SubscriptionTier(ctx context.Context, userID string) (user.SubscriptionTier, error) {
	var tier string
	err := r.conn.QueryRow(ctx,
		`SELECT subscription_tier FROM users WHERE id = $1`,
		userID,
	).Scan(&tier)
	if err != nil {
		if IsNoRows(err) {
			return "", shared.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load subscription tier: %w", err)
	}
	return user.SubscriptionTier(tier), nil
}

// EarnedAchievementIDs returns the set of achievement IDs the user has earned.
func (r *UserRepository) EarnedAchievementIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT achievement_id FROM user_achievements WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned achievements: %w", err)
	}
	defer rows.Close()

	earned := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan achievement id: %w", err)
		}
		earned[id] = true
	}
	return earned, rows.Err()
}

// ActiveUserIDs returns users with at least one workout session in the
// last days days.
func (r *UserRepository) ActiveUserIDs(ctx context.Context, days int) ([]string, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT DISTINCT user_id
		FROM workout_sessions
		WHERE completed_at >= NOW() - make_interval(days => $1)
	`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GrantAchievement records that the user earned an achievement. Granting
// the same achievement twice is a no-op.
func (r *UserRepository) GrantAchievement(ctx context.Context, userID, achievementID string) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID)
	if err != nil {
		return fmt.Errorf("failed to grant achievement: %w", err)
	}
	return nil
}
