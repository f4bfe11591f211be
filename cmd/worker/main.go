// Package main - точка входа фонового процесса (Worker) Pulse Fitness Hub.
//
// Worker отвечает за конвейер достижений:
// - Периодический пересчёт прогресса достижений активных пользователей
// - Прогрев кеша прогресса в Redis
// - Выдача наград по событиям завершения достижений
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Sagas)
// - Infrastructure: реализация репозиториев, кеш, планировщик
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application layer
	"github.com/pulse-hub/pulse-fitness-hub/internal/application/command"
	"github.com/pulse-hub/pulse-fitness-hub/internal/application/query"
	"github.com/pulse-hub/pulse-fitness-hub/internal/application/saga"

	// Domain layer
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/achievement"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/recommendation"
	"github.com/pulse-hub/pulse-fitness-hub/internal/domain/shared"

	// Infrastructure layer
	"github.com/pulse-hub/pulse-fitness-hub/internal/infrastructure/messaging"
	"github.com/pulse-hub/pulse-fitness-hub/internal/infrastructure/persistence/postgres"
	"github.com/pulse-hub/pulse-fitness-hub/internal/infrastructure/persistence/redis"
	"github.com/pulse-hub/pulse-fitness-hub/internal/infrastructure/scheduler"
	"github.com/pulse-hub/pulse-fitness-hub/internal/infrastructure/scheduler/jobs"
	"github.com/pulse-hub/pulse-fitness-hub/internal/infrastructure/service"

	// Packages
	"github.com/pulse-hub/pulse-fitness-hub/config"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/circuitbreaker"
	"github.com/pulse-hub/pulse-fitness-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// Создаём корневой контекст с возможностью отмены
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем приложение
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Pulse Fitness Hub Worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := connectDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var progressCache achievement.ProgressCache

	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureProgressCache, nil) {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			cacheBreaker := circuitbreaker.CacheBreaker(service.LogStateChanges(log))
			progressCache = service.NewResilientProgressCache(
				redis.NewProgressCache(redisCache),
				retry.CacheRetrier(),
				cacheBreaker,
				log,
			)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	sessionRepo := postgres.NewSessionRepository(dbConn)
	streakRepo := postgres.NewStreakRepository(dbConn)
	exerciseRepo := postgres.NewExerciseRepository(dbConn)

	// Все хранилища делят один предохранитель: мёртвая база размыкает
	// цепь для всех сразу.
	dbRetrier := retry.DatabaseRetrier()
	dbBreaker := circuitbreaker.DatabaseBreaker(service.LogStateChanges(log))
	userStore := service.NewResilientUserStore(userRepo, dbRetrier, dbBreaker)
	sessionStore := service.NewResilientSessionStore(sessionRepo, dbRetrier, dbBreaker)
	streakStore := service.NewResilientStreakStore(streakRepo, dbRetrier, dbBreaker)
	exerciseStore := service.NewResilientExerciseStore(exerciseRepo, dbRetrier, dbBreaker)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBusConfig.AsyncMode = true
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// Завершённое достижение фиксируется в базе обработчиком события.
	if err := eventBus.Subscribe(shared.EventAchievementCompleted, func(event shared.Event) error {
		completed, ok := event.(shared.AchievementCompletedEvent)
		if !ok {
			return nil
		}
		grantCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := userRepo.GrantAchievement(grantCtx, completed.UserID, completed.AchievementID); err != nil {
			return err
		}
		log.Info("achievement granted",
			"user_id", completed.UserID,
			"achievement_id", completed.AchievementID,
			"points", completed.Points,
		)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to subscribe to completion events: %w", err)
	}

	if err := eventBus.Subscribe(shared.EventProgressRefreshed, func(event shared.Event) error {
		refreshed, ok := event.(shared.ProgressRefreshedEvent)
		if !ok {
			return nil
		}
		log.Debug("progress refreshed",
			"user_id", refreshed.UserID,
			"achievements", refreshed.Achievements,
			"failed", refreshed.Failed,
		)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to subscribe to refresh events: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. СБОРКА КОНВЕЙЕРА ПРОГРЕССА
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("building progress pipeline...")
	catalog, err := achievement.NewInMemoryCatalog(achievement.BuiltinDefinitions())
	if err != nil {
		return fmt.Errorf("failed to build achievement catalog: %w", err)
	}

	evaluator := saga.NewEvaluator(exerciseStore)

	flowConfig := saga.ProgressFlowConfig{
		MaxConcurrency:    cfg.Progress.MaxConcurrency,
		EvaluationTimeout: cfg.Progress.EvaluationTimeout,
		CacheTTL:          cfg.Progress.CacheTTL,
		EnableEvents:      cfg.Features.IsEnabled(config.FeatureProgressEvents, nil),
	}
	flow := saga.NewProgressFlowSaga(
		userStore,
		sessionStore,
		streakStore,
		catalog,
		evaluator,
		progressCache,
		eventBus,
		flowConfig,
	)

	// Конфигурация стратегий рекомендаций из feature-флагов: любую
	// стратегию можно выключить без передеплоя.
	engineConfig := recommendation.Config{
		Order:                   recommendation.DefaultStrategyOrder(),
		EnableAlmostComplete:    cfg.Features.IsEnabled(config.FeatureRecommendAlmostComplete, nil),
		EnableNextTier:          cfg.Features.IsEnabled(config.FeatureRecommendNextTier, nil),
		EnableCategoryDiversity: cfg.Features.IsEnabled(config.FeatureRecommendCategoryDiversity, nil),
		EnableSeasonalTimely:    cfg.Features.IsEnabled(config.FeatureRecommendSeasonalTimely, nil),
	}
	engine := recommendation.NewEngine(catalog, engineConfig)

	progressHandler := query.NewGetProgressHandler(catalog, progressCache, flow)
	recommendationsHandler := query.NewGetRecommendationsHandler(catalog, flow, engine, query.RecommendationLimits{
		Default: cfg.Recommendations.DefaultLimit,
		Max:     cfg.Recommendations.MaxLimit,
	}, log)
	refreshHandler := command.NewRefreshProgressHandler(userStore, flow, log)

	// Suppress unused variable warnings (read side is served by the API process)
	_ = progressHandler
	_ = recommendationsHandler

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ПЛАНИРОВЩИК ФОНОВЫХ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled && cfg.Features.IsEnabled(config.FeatureSchedulerRefresh, nil) {
		log.Info("starting scheduler...",
			"refresh_interval", cfg.Scheduler.RefreshInterval.String(),
			"active_window_days", cfg.Scheduler.ActiveWindowDays,
		)

		sched := scheduler.NewScheduler(scheduler.SchedulerConfig{Logger: log})
		refreshJob := jobs.NewRefreshProgressJob(refreshHandler, log, jobs.RefreshProgressConfig{
			ActiveWindowDays: cfg.Scheduler.ActiveWindowDays,
			RunTimeout:       cfg.Scheduler.JobTimeout,
		})
		if err := sched.Register(refreshJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshInterval)); err != nil {
			return fmt.Errorf("failed to register refresh job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	} else {
		log.Info("scheduler disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Pulse Fitness Hub Worker is running")

	// Ожидаем сигнал завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// connectDatabase открывает пул соединений: по URL, если он задан,
// иначе по отдельным параметрам. Настройки пула из конфигурации
// применяются в обоих случаях.
func connectDatabase(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	if cfg.Database.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MinConns:        int32(cfg.Database.MinIdleConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		})
	}

	pgCfg := postgres.DefaultConfig()
	if cfg.Database.MaxOpenConns > 0 {
		pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MinIdleConns > 0 {
		pgCfg.MinConns = int32(cfg.Database.MinIdleConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime > 0 {
		pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	}
	return postgres.NewConnection(ctx, pgCfg)
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Observability.LogLevel),
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// parseLogLevel преобразует строковый уровень в slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
