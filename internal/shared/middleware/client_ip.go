package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const clientIPKey contextKey = "client_ip"

// ClientIP extracts the caller's address and injects it into both the gin
// context and the request context so services can reach it without gin.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := extractIPAddress(c.Request)

		c.Set("client_ip", ip)
		ctx := context.WithValue(c.Request.Context(), clientIPKey, ip)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ClientIPFromContext retrieves the client IP stored by ClientIP.
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return ""
}

func extractIPAddress(r *http.Request) string {
	// X-Real-IP is set by the reverse proxy.
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	// X-Forwarded-For may hold a chain; the first hop is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
