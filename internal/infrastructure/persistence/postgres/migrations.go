package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users table
-- Version: 001

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    display_name VARCHAR(100) NOT NULL,
    subscription_tier VARCHAR(20) NOT NULL DEFAULT 'free',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_subscription_tier CHECK (subscription_tier IN ('free', 'premium'))
);

CREATE INDEX IF NOT EXISTS idx_users_subscription_tier ON users(subscription_tier);
`

const migration001Down = `
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE EXERCISES AND WORKOUT SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create exercises and workout_sessions tables
-- Version: 002

CREATE TABLE IF NOT EXISTS exercises (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL,
    category VARCHAR(30) NOT NULL,
    difficulty INTEGER NOT NULL DEFAULT 1,

    CONSTRAINT valid_difficulty CHECK (difficulty BETWEEN 1 AND 5)
);

CREATE INDEX IF NOT EXISTS idx_exercises_category ON exercises(category);
CREATE INDEX IF NOT EXISTS idx_exercises_difficulty ON exercises(difficulty);

CREATE TABLE IF NOT EXISTS workout_sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    exercise_id UUID NOT NULL REFERENCES exercises(id),
    completed_at TIMESTAMP WITH TIME ZONE NOT NULL,
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    was_personal_best BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_duration CHECK (duration_seconds >= 0)
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_completed ON workout_sessions(user_id, completed_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_exercise ON workout_sessions(exercise_id);
CREATE INDEX IF NOT EXISTS idx_sessions_personal_best ON workout_sessions(user_id) WHERE was_personal_best;
`

const migration002Down = `
DROP TABLE IF EXISTS workout_sessions;
DROP TABLE IF EXISTS exercises;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE EARNED ACHIEVEMENTS AND STREAKS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create user_achievements and streaks tables
-- Version: 003

CREATE TABLE IF NOT EXISTS user_achievements (
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    achievement_id VARCHAR(50) NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, achievement_id)
);

CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id);

CREATE TABLE IF NOT EXISTS streaks (
    user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_session_date DATE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_current_streak CHECK (current_streak >= 0),
    CONSTRAINT valid_longest_streak CHECK (longest_streak >= current_streak OR longest_streak >= 0)
);
`

const migration003Down = `
DROP TABLE IF EXISTS streaks;
DROP TABLE IF EXISTS user_achievements;
`

// GetMigrations returns all migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_users", Up: migration001Up, Down: migration001Down},
		{Version: 2, Name: "create_exercises_and_sessions", Up: migration002Up, Down: migration002Down},
		{Version: 3, Name: "create_achievements_and_streaks", Up: migration003Up, Down: migration003Down},
	}
}
