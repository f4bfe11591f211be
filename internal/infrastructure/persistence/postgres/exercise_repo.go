package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXERCISE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ExerciseRepository implements activity.ExerciseStore for PostgreSQL.
type ExerciseRepository struct {
	conn *Connection
}

// NewExerciseRepository creates a new ExerciseRepository.
func NewExerciseRepository(conn *Connection) *ExerciseRepository {
	return &ExerciseRepository{conn: conn}
}

// IDsForDifficultyLevels returns the IDs of exercises at any of the given
// difficulty levels.
func (r *ExerciseRepository) IDsForDifficultyLevels(ctx context.Context, levels []int) ([]string, error) {
	if len(levels) == 0 {
		return nil, nil
	}

	rows, err := r.conn.Query(ctx,
		`SELECT id FROM exercises WHERE difficulty = ANY($1)`,
		levels,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises by difficulty: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan exercise id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
