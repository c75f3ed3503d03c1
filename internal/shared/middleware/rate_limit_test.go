package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAllowsUpToMax(t *testing.T) {
	store := NewMemoryRateLimitStore()
	defer store.Stop()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		allowed, err := store.Allow(ctx, "k", time.Minute, 5)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := store.Allow(ctx, "k", time.Minute, 5)
	require.NoError(t, err)
	assert.False(t, allowed, "request over budget should be rejected")
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryRateLimitStore()
	defer store.Stop()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.Allow(ctx, "user-a", time.Minute, 3)
		require.NoError(t, err)
	}

	blocked, _ := store.Allow(ctx, "user-a", time.Minute, 3)
	assert.False(t, blocked)

	fresh, _ := store.Allow(ctx, "user-b", time.Minute, 3)
	assert.True(t, fresh, "a different key has its own budget")
}

func TestRateLimitMiddlewareRejectsWith429(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryRateLimitStore()
	defer store.Stop()

	router := gin.New()
	router.Use(RateLimit(LimiterConfig{
		Name:   "test",
		Window: time.Minute,
		Max:    2,
	}, store))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, time.Duration, int) (bool, error) {
	return false, context.DeadlineExceeded
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimit(LimiterConfig{
		Name:   "test",
		Window: time.Minute,
		Max:    1,
	}, failingStore{}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code, "store failure must not reject traffic")
	}
}
