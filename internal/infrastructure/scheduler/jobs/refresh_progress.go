// Package jobs contains implementations of scheduled jobs for Pulse
// Fitness Hub.
package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pulse-hub/pulse-fitness-hub/internal/application/command"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH PROGRESS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshProgressJob periodically recomputes achievement progress for
// active users so that progress reads and recommendations hit a warm
// cache instead of recomputing from scratch.
type RefreshProgressJob struct {
	handler *command.RefreshProgressHandler
	logger  *slog.Logger
	config  RefreshProgressConfig

	lastStats atomic.Value // *RefreshStats
}

// RefreshProgressConfig contains configuration for the refresh job.
type RefreshProgressConfig struct {
	// ActiveWindowDays - refresh users with sessions in the last N days.
	ActiveWindowDays int

	// RunTimeout - hard cap on one batch run.
	RunTimeout time.Duration
}

// DefaultRefreshProgressConfig returns sensible defaults.
func DefaultRefreshProgressConfig() RefreshProgressConfig {
	return RefreshProgressConfig{
		ActiveWindowDays: 7,
		RunTimeout:       10 * time.Minute,
	}
}

// RefreshStats describes the outcome of the last refresh run.
type RefreshStats struct {
	Users       int
	Completed   int
	FailedUsers int
	Duration    time.Duration
	FinishedAt  time.Time
}

// NewRefreshProgressJob creates a new RefreshProgressJob.
func NewRefreshProgressJob(handler *command.RefreshProgressHandler, logger *slog.Logger, config RefreshProgressConfig) *RefreshProgressJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.ActiveWindowDays <= 0 {
		config.ActiveWindowDays = DefaultRefreshProgressConfig().ActiveWindowDays
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = DefaultRefreshProgressConfig().RunTimeout
	}
	return &RefreshProgressJob{
		handler: handler,
		logger:  logger,
		config:  config,
	}
}

// Name returns the unique name of the job.
func (j *RefreshProgressJob) Name() string {
	return "refresh_progress"
}

// Description returns a human-readable description of the job.
func (j *RefreshProgressJob) Description() string {
	return "Recomputes achievement progress for recently active users"
}

// Run executes one batch refresh.
func (j *RefreshProgressJob) Run(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, j.config.RunTimeout)
	defer cancel()

	result, err := j.handler.Handle(runCtx, command.RefreshProgressCommand{
		ActiveWindowDays: j.config.ActiveWindowDays,
	})
	if err != nil {
		return err
	}

	stats := &RefreshStats{
		Users:       result.Users,
		Completed:   result.Completed,
		FailedUsers: len(result.FailedUsers),
		Duration:    result.Duration,
		FinishedAt:  timeutil.Now(),
	}
	j.lastStats.Store(stats)

	j.logger.Info("progress refresh finished",
		"users", stats.Users,
		"completed_achievements", stats.Completed,
		"failed_users", stats.FailedUsers,
		"duration", stats.Duration.String(),
		"finished_at", timeutil.FormatDateTimeStr(stats.FinishedAt),
	)
	return nil
}

// LastStats returns the stats of the most recent run, if any.
func (j *RefreshProgressJob) LastStats() (*RefreshStats, bool) {
	stats, ok := j.lastStats.Load().(*RefreshStats)
	return stats, ok
}
