package middleware

import (
	"github.com/gin-gonic/gin"

	"snippethub-backend/internal/shared/response"
)

// Role hierarchy: admin ⊇ moderator ⊇ user.
var roleLevels = map[string]int{
	"user":      1,
	"moderator": 2,
	"admin":     3,
}

// RequireRole gates a route on a minimum role. Must run after Auth.
func RequireRole(minRole string) gin.HandlerFunc {
	required := roleLevels[minRole]

	return func(c *gin.Context) {
		role := c.GetString("userRole")
		if roleLevels[role] < required {
			response.ErrorResponse(c, 403, "FORBIDDEN", "Insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin is shorthand for the admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole("admin")
}
