package container

import (
	"context"
	"fmt"
	"time"

	"snippethub-backend/internal/config"
	audithandler "snippethub-backend/internal/domains/audit/handler"
	auditrepo "snippethub-backend/internal/domains/audit/repository"
	auditservice "snippethub-backend/internal/domains/audit/service"
	billinghandler "snippethub-backend/internal/domains/billing/handler"
	billingservice "snippethub-backend/internal/domains/billing/service"
	snippethandler "snippethub-backend/internal/domains/snippet/handler"
	snippetrepo "snippethub-backend/internal/domains/snippet/repository"
	snippetservice "snippethub-backend/internal/domains/snippet/service"
	uploadhandler "snippethub-backend/internal/domains/upload/handler"
	uploadrepo "snippethub-backend/internal/domains/upload/repository"
	uploadservice "snippethub-backend/internal/domains/upload/service"
	userhandler "snippethub-backend/internal/domains/user/handler"
	userrepo "snippethub-backend/internal/domains/user/repository"
	userservice "snippethub-backend/internal/domains/user/service"
	"snippethub-backend/internal/infrastructure/billing"
	infracache "snippethub-backend/internal/infrastructure/cache"
	"snippethub-backend/internal/infrastructure/database"
	"snippethub-backend/internal/infrastructure/errortrack"
	"snippethub-backend/internal/infrastructure/queue"
	"snippethub-backend/internal/infrastructure/realtime"
	"snippethub-backend/internal/infrastructure/storage"
	"snippethub-backend/internal/shared/middleware"
	pkgcache "snippethub-backend/pkg/cache"
	"snippethub-backend/pkg/jwt"
	"snippethub-backend/pkg/logger"
)

// Container wires configuration, infrastructure, repositories, services and
// handlers in dependency order. Optional integrations stay nil when their
// feature flag is off; consumers check for nil.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB

	Cache        pkgcache.Cache
	Storage      *storage.MinIOStorage
	Queue        *queue.Client
	Hub          *realtime.Hub
	Billing      *billing.Client
	ErrorTracker errortrack.Notifier

	JWT            *jwt.Manager
	RateLimitStore middleware.RateLimitStore

	AuditService   auditservice.ServiceInterface
	UserService    userservice.ServiceInterface
	SnippetService snippetservice.ServiceInterface
	UploadService  uploadservice.ServiceInterface
	BillingService billingservice.ServiceInterface

	AuditHandler   *audithandler.AuditHandler
	UserHandler    *userhandler.UserHandler
	SnippetHandler *snippethandler.SnippetHandler
	UploadHandler  *uploadhandler.UploadHandler
	BillingHandler *billinghandler.BillingHandler

	redisCache    *infracache.RedisCache
	memoryLimiter *middleware.MemoryRateLimitStore
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg

	logger.Init(cfg.App.Environment)

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	c.initIntegrations()
	c.initDomains()

	logger.Info().
		Str("environment", cfg.App.Environment).
		Bool("redis", cfg.Features.Redis).
		Bool("storage", cfg.Features.Storage).
		Bool("email", cfg.Features.Email).
		Bool("billing", cfg.Features.Billing).
		Bool("realtime", cfg.Features.Realtime).
		Msg("Container initialized")

	return c, nil
}

func (c *Container) initDatabase() error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("load database config: %w", err)
	}

	c.DB = database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := c.DB.Connect(ctx); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if err := database.RunMigrations(c.DB.URL()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (c *Container) initIntegrations() {
	cfg := c.Config

	c.JWT = jwt.NewManager(cfg.JWT.Secret)
	c.ErrorTracker = errortrack.NopNotifier{}
	if cfg.Features.ErrorTracker {
		c.ErrorTracker = errortrack.NewWebhookNotifier(cfg.ErrorTrackerURL())
	}

	if cfg.Features.Redis {
		redisCache := infracache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := redisCache.Connect(ctx); err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable, falling back to in-process stores")
		} else {
			c.redisCache = redisCache
			c.Cache = redisCache
			c.RateLimitStore = middleware.NewRedisRateLimitStore(redisCache)
			c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		}
	}

	if c.RateLimitStore == nil {
		c.memoryLimiter = middleware.NewMemoryRateLimitStore()
		c.RateLimitStore = c.memoryLimiter
	}

	if cfg.Features.Storage {
		store, err := storage.NewMinIOStorage(cfg.MinIO)
		if err != nil {
			logger.Warn().Err(err).Msg("MinIO unreachable, uploads disabled")
		} else {
			c.Storage = store
		}
	}

	if cfg.Features.Billing {
		c.Billing = billing.NewClient(cfg.Billing)
	}

	if cfg.Features.Realtime {
		c.Hub = realtime.NewHub()
	}
}

func (c *Container) initDomains() {
	pool := c.DB.Pool

	auditRepo := auditrepo.NewPostgresRepository(pool)
	userRepo := userrepo.NewPostgresRepository(pool)
	snippetRepo := snippetrepo.NewPostgresRepository(pool)

	c.AuditService = auditservice.NewAuditService(auditRepo)
	c.UserService = userservice.NewUserService(userRepo, c.AuditService, c.Queue)
	c.SnippetService = snippetservice.NewSnippetService(snippetRepo, c.AuditService, c.Queue, c.Hub)

	c.AuditHandler = audithandler.NewAuditHandler(c.AuditService)
	c.UserHandler = userhandler.NewUserHandler(c.UserService)
	c.SnippetHandler = snippethandler.NewSnippetHandler(c.SnippetService)

	if c.Storage != nil {
		uploadRepo := uploadrepo.NewPostgresRepository(pool)
		c.UploadService = uploadservice.NewUploadService(uploadRepo, c.Storage, c.AuditService, c.Queue)
		c.UploadHandler = uploadhandler.NewUploadHandler(c.UploadService)
	}

	if c.Billing != nil {
		c.BillingService = billingservice.NewBillingService(c.Billing, userRepo, c.AuditService, c.Hub)
		c.BillingHandler = billinghandler.NewBillingHandler(c.BillingService)
	}
}

// Cleanup releases resources in reverse initialization order.
func (c *Container) Cleanup() {
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close queue client")
		}
	}
	if c.memoryLimiter != nil {
		c.memoryLimiter.Stop()
	}
	if c.redisCache != nil {
		if err := c.redisCache.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.Info().Msg("Container cleaned up")
}
