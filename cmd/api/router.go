package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"snippethub-backend/internal/shared/middleware"
	"snippethub-backend/pkg/container"
)

func setupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.SecurityHeaders(),
		middleware.CORS(c.Config.App.CORSOrigin),
		middleware.ClientIP(),
		httpMetrics.Middleware(),
		middleware.ErrorHandler(c.Config.App.Environment, c.ErrorTracker),
	)

	router.GET("/health", healthHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	auth := middleware.Auth(c.JWT, c.UserService)
	optionalAuth := middleware.OptionalAuth(c.JWT, c.UserService)

	apiLimit := middleware.RateLimit(middleware.LimiterConfig{
		Name:   "api",
		Window: time.Minute,
		Max:    120,
		Key:    middleware.DefaultKey,
	}, c.RateLimitStore)
	writeLimit := middleware.RateLimit(middleware.LimiterConfig{
		Name:   "write",
		Window: time.Minute,
		Max:    30,
		Key:    middleware.DefaultKey,
	}, c.RateLimitStore)
	webhookLimit := middleware.RateLimit(middleware.LimiterConfig{
		Name:   "webhook",
		Window: time.Minute,
		Max:    60,
		Key:    middleware.WebhookKey,
	}, c.RateLimitStore)

	v1 := router.Group("/api/v1")
	v1.Use(apiLimit)

	snippets := v1.Group("/snippets")
	{
		snippets.GET("", optionalAuth, c.SnippetHandler.List)
		snippets.GET("/popular", c.SnippetHandler.GetPopular)
		snippets.GET("/mine", auth, c.SnippetHandler.ListMine)
		snippets.GET("/stats", auth, c.SnippetHandler.GetStats)
		snippets.GET("/:id", optionalAuth, c.SnippetHandler.GetByID)

		snippets.POST("", auth, writeLimit, c.SnippetHandler.Create)
		snippets.PUT("/:id", auth, writeLimit, c.SnippetHandler.Update)
		snippets.DELETE("/:id", auth, writeLimit, c.SnippetHandler.Delete)
		snippets.POST("/:id/publish", auth, writeLimit, c.SnippetHandler.Publish)
		snippets.POST("/:id/archive", auth, writeLimit, c.SnippetHandler.Archive)
		snippets.POST("/bulk-delete", auth, writeLimit, c.SnippetHandler.BulkDelete)

		admin := snippets.Group("/admin", auth, middleware.RequireAdmin())
		{
			admin.GET("/all", c.SnippetHandler.ListAll)
			admin.POST("/:id/restore", c.SnippetHandler.Restore)
		}
	}

	users := v1.Group("/users")
	{
		users.GET("/me", auth, c.UserHandler.GetMe)
		users.PUT("/me", auth, writeLimit, c.UserHandler.UpdateMe)
		users.GET("", auth, middleware.RequireAdmin(), c.UserHandler.List)
	}

	v1.GET("/audit-logs", auth, middleware.RequireAdmin(), c.AuditHandler.List)

	webhooks := v1.Group("/webhooks", webhookLimit)
	{
		if c.Config.Webhook.AuthSecret != "" {
			webhooks.POST("/auth",
				middleware.WebhookSignature(c.Config.Webhook.AuthSecret, "X-Webhook-Signature"),
				c.UserHandler.ProviderWebhook)
		}
		if c.BillingHandler != nil && c.Config.Billing.WebhookSecret != "" {
			webhooks.POST("/billing",
				middleware.WebhookSignature(c.Config.Billing.WebhookSecret, "X-Billing-Signature"),
				c.BillingHandler.Webhook)
		}
	}

	if c.UploadHandler != nil {
		uploads := v1.Group("/uploads", auth)
		{
			uploads.POST("", writeLimit, c.UploadHandler.Upload)
			uploads.GET("", c.UploadHandler.ListMine)
			uploads.GET("/:id", c.UploadHandler.GetByID)
		}
	}

	if c.BillingHandler != nil {
		billing := v1.Group("/billing", auth)
		{
			billing.POST("/checkout", writeLimit, c.BillingHandler.Checkout)
			billing.POST("/portal", writeLimit, c.BillingHandler.Portal)
		}
	}

	if c.Hub != nil {
		router.GET("/ws", auth, websocketHandler(c))
	}

	return router
}
