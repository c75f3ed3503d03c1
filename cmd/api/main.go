package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"snippethub-backend/pkg/container"
	"snippethub-backend/pkg/logger"
)

func main() {
	// Missing .env is fine; production injects real environment variables.
	_ = godotenv.Load()

	c, err := container.NewContainer()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer c.Cleanup()

	if c.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(c)
	if err := serve(router, c.Config.App.Port); err != nil {
		logger.Fatal().Err(err).Msg("Server exited with error")
	}
}
