package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/config"
	"github.com/worknest/worknest-engine/pkg/database"
	"github.com/worknest/worknest-engine/pkg/logging"
	"github.com/worknest/worknest-engine/pkg/repositories"
	"github.com/worknest/worknest-engine/pkg/retry"
	"github.com/worknest/worknest-engine/pkg/services"
)

// bootstrap loads configuration and builds the logger every command needs.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// connectDatabase opens the pool, waiting for PostgreSQL to accept
// connections, and applies pending migrations.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	connStr := cfg.Database.ConnectionString()
	logger.Info("Connecting to database", zap.String("url", logging.SanitizeConnectionString(connStr)))

	db, err := retry.DoWithResult(ctx, retry.StartupConfig(), func() (*database.DB, error) {
		db, err := database.NewConnection(ctx, &cfg.Database)
		if err != nil {
			logger.Warn("Database not ready", zap.String("error", logging.SanitizeError(err)))
		}
		return db, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %s", logging.SanitizeError(err))
	}

	if err := database.MigrateURL(connStr, cfg.Database.MigrationsPath, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// unread cache then falls back to PostgreSQL.
func connectRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	client, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*redis.Client, error) {
		return database.NewRedisClient(ctx, &cfg.Redis)
	})
	if err != nil {
		logger.Warn("Redis unavailable, unread counts will not be cached", zap.Error(err))
		return nil
	}
	if client != nil {
		logger.Info("Connected to Redis", zap.String("host", cfg.Redis.Host), zap.Int("db", cfg.Redis.DB))
	}
	return client
}

// app holds the wired service layer.
type app struct {
	users         services.UserService
	projects      services.ProjectService
	tasks         services.TaskService
	invitations   services.InvitationService
	notifications services.NotificationService
	activities    services.ActivityService
}

func newApp(redisClient *redis.Client, logger *zap.Logger) *app {
	userRepo := repositories.NewUserRepository()
	projectRepo := repositories.NewProjectRepository()
	memberRepo := repositories.NewMemberRepository()
	taskRepo := repositories.NewTaskRepository()
	invitationRepo := repositories.NewInvitationRepository()
	notificationRepo := repositories.NewNotificationRepository()
	activityRepo := repositories.NewActivityRepository()

	runInTx := services.NewTxFunc()

	activities := services.NewActivityService(activityRepo, taskRepo, projectRepo, memberRepo, logger)
	notifications := services.NewNotificationService(notificationRepo, services.NewUnreadCache(redisClient, logger), logger)
	invitations := services.NewInvitationService(invitationRepo, userRepo, projectRepo, memberRepo, runInTx, logger)

	return &app{
		users:         services.NewUserService(userRepo, logger),
		projects:      services.NewProjectService(projectRepo, memberRepo, userRepo, taskRepo, invitations, runInTx, logger),
		tasks:         services.NewTaskService(taskRepo, userRepo, projectRepo, memberRepo, activities, notifications, runInTx, logger),
		invitations:   invitations,
		notifications: notifications,
		activities:    activities,
	}
}
