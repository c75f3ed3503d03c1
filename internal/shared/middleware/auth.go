package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/response"
	"snippethub-backend/pkg/jwt"
)

// AuthedUser is the resolved local identity behind a bearer token.
type AuthedUser struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// UserProvisioner resolves provider claims to a local user, creating the
// account on first sight (lazy create-on-demand).
type UserProvisioner interface {
	EnsureUser(ctx context.Context, claims *jwt.Claims) (*AuthedUser, error)
}

// Auth verifies the bearer token and resolves the local user.
// Sets userID, userEmail and userRole on the context.
func Auth(manager *jwt.Manager, users UserProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, appErr := authenticate(c, manager, users)
		if appErr != nil {
			response.FromAppError(c, appErr, "")
			c.Abort()
			return
		}

		setAuthedUser(c, user)
		c.Next()
	}
}

// OptionalAuth resolves the user when a token is present but lets anonymous
// requests through. Invalid tokens are still rejected: a caller presenting
// credentials must present valid ones.
func OptionalAuth(manager *jwt.Manager, users UserProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		user, appErr := authenticate(c, manager, users)
		if appErr != nil {
			response.FromAppError(c, appErr, "")
			c.Abort()
			return
		}

		setAuthedUser(c, user)
		c.Next()
	}
}

func authenticate(c *gin.Context, manager *jwt.Manager, users UserProvisioner) (*AuthedUser, *apperror.Error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, apperror.Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, apperror.Unauthorized("Invalid authorization header format")
	}

	claims, err := manager.ValidateToken(parts[1])
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}

	user, err := users.EnsureUser(c.Request.Context(), claims)
	if err != nil {
		return nil, apperror.From(err)
	}

	return user, nil
}

func setAuthedUser(c *gin.Context, user *AuthedUser) {
	c.Set("userID", user.ID)
	c.Set("userEmail", user.Email)
	c.Set("userRole", user.Role)
}

// UserIDFromGin returns the authenticated user id, or uuid.Nil for anonymous.
func UserIDFromGin(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
