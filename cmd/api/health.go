package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"snippethub-backend/pkg/container"
)

const healthCheckTimeout = 5 * time.Second

// healthHandler reports the database and every enabled integration. Any
// failing dependency degrades the overall status and flips the code to 503.
func healthHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := "healthy"
		checks := gin.H{}

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			checks["database"] = "unreachable"
			status = "degraded"
		} else {
			checks["database"] = "ok"
		}

		if c.Cache != nil {
			if err := c.Cache.Ping(checkCtx); err != nil {
				checks["redis"] = "unreachable"
				status = "degraded"
			} else {
				checks["redis"] = "ok"
			}
		}

		if c.Storage != nil {
			if err := c.Storage.HealthCheck(checkCtx); err != nil {
				checks["storage"] = "unreachable"
				status = "degraded"
			} else {
				checks["storage"] = "ok"
			}
		}

		if c.Billing != nil {
			if err := c.Billing.HealthCheck(checkCtx); err != nil {
				checks["billing"] = "unreachable"
				status = "degraded"
			} else {
				checks["billing"] = "ok"
			}
		}

		if c.Hub != nil {
			checks["realtime_connections"] = c.Hub.ConnectionCount()
		}

		code := http.StatusOK
		if status != "healthy" {
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":  status,
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
