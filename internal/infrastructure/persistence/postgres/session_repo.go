package postgres

import (
	"context"
	"fmt"

	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements activity.SessionStore for PostgreSQL.
// Sessions are joined with exercises so that callers get the exercise
// category and difficulty without a second round trip.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// ListSessions returns the user's workout sessions matching the filter,
// newest first.
func (r *SessionRepository) ListSessions(ctx context.Context, userID string, filter activity.SessionFilter) ([]activity.Session, error) {
	query := `
		SELECT s.id, s.user_id, s.exercise_id, e.category, s.completed_at,
		       s.duration_seconds, e.difficulty, s.was_personal_best
		FROM workout_sessions s
		JOIN exercises e ON e.id = s.exercise_id
		WHERE s.user_id = $1
	`
	args := []interface{}{userID}

	if filter.ExerciseCategory != "" {
		args = append(args, filter.ExerciseCategory)
		query += fmt.Sprintf(" AND e.category = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND s.completed_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND s.completed_at <= $%d", len(args))
	}
	query += " ORDER BY s.completed_at DESC"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []activity.Session
	for rows.Next() {
		var s activity.Session
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.ExerciseID,
			&s.ExerciseCategory,
			&s.CompletedAt,
			&s.DurationSeconds,
			&s.Difficulty,
			&s.WasPersonalBest,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// RecordSession persists a completed workout session.
func (r *SessionRepository) RecordSession(ctx context.Context, s activity.Session) error {
	query := `
		INSERT INTO workout_sessions (
			id, user_id, exercise_id, completed_at, duration_seconds, was_personal_best
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.ExerciseID,
		s.CompletedAt,
		s.DurationSeconds,
		s.WasPersonalBest,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("failed to record session: unknown user or exercise: %w", err)
		}
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}
