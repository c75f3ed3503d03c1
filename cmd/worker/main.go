package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"snippethub-backend/internal/config"
	auditrepo "snippethub-backend/internal/domains/audit/repository"
	auditservice "snippethub-backend/internal/domains/audit/service"
	uploadrepo "snippethub-backend/internal/domains/upload/repository"
	"snippethub-backend/internal/infrastructure/database"
	"snippethub-backend/internal/infrastructure/email"
	"snippethub-backend/internal/infrastructure/queue"
	"snippethub-backend/internal/infrastructure/storage"
	"snippethub-backend/internal/shared"
	"snippethub-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.App.Environment)

	if !cfg.Features.Redis {
		logger.Fatal().Msg("Worker requires REDIS_HOST to be set")
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load database config")
	}
	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.Connect(ctx); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	cancel()
	defer db.Close()

	handlers := &taskHandlers{
		audit:   auditservice.NewAuditService(auditrepo.NewPostgresRepository(db.Pool)),
		uploads: uploadrepo.NewPostgresRepository(db.Pool),
	}
	if cfg.Features.Email {
		handlers.email = email.NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	}
	if cfg.Features.Storage {
		store, err := storage.NewMinIOStorage(cfg.MinIO)
		if err != nil {
			logger.Warn().Err(err).Msg("MinIO unreachable, upload processing disabled")
		} else {
			handlers.storage = store
		}
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 20,
		Queues: map[string]int{
			"high":    20,
			"default": 10,
			"low":     5,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error().Err(err).Str("task", task.Type()).Msg("Task failed")
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(shared.TypeSendWelcomeEmail, handlers.HandleWelcomeEmail)
	mux.HandleFunc(shared.TypeSendPublishedEmail, handlers.HandlePublishedEmail)
	mux.HandleFunc(shared.TypeProcessUpload, handlers.HandleProcessUpload)
	mux.HandleFunc(shared.TypePruneAuditLogs, handlers.HandlePruneAuditLogs)

	scheduler := queue.NewScheduler(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := scheduler.RegisterCleanupJobs(cfg.Audit.RetentionDays); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register scheduled jobs")
	}

	go func() {
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("Scheduler stopped")
		}
	}()

	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start worker")
	}
	logger.Info().Msg("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info().Str("signal", sig.String()).Msg("Shutting down worker")

	scheduler.Shutdown()
	srv.Shutdown()
}
