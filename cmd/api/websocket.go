package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"snippethub-backend/internal/shared/middleware"
	"snippethub-backend/pkg/container"
	"snippethub-backend/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients authenticate with a bearer token, not cookies,
		// so cross-origin upgrades carry no ambient credentials.
		return true
	},
}

// websocketHandler upgrades GET /ws and registers the connection with the
// hub so the authenticated user receives their events.
func websocketHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID := middleware.UserIDFromGin(ctx)

		conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", userID.String()).Msg("WebSocket upgrade failed")
			return
		}

		c.Hub.Register(userID, conn)
	}
}
