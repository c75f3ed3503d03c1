package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/response"
	pkgcache "snippethub-backend/pkg/cache"
)

// KeyFunc extracts the identity a limiter counts against.
type KeyFunc func(c *gin.Context) string

// LimiterConfig is one (window, max, key) triple.
type LimiterConfig struct {
	Name   string
	Window time.Duration
	Max    int
	Key    KeyFunc
}

// RateLimitStore counts requests per key within a window.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (bool, error)
}

// RateLimit rejects requests over the configured budget with 429 before they
// reach the controller. A store failure fails open: availability over
// strictness when the shared store is down.
func RateLimit(cfg LimiterConfig, store RateLimitStore) gin.HandlerFunc {
	if cfg.Key == nil {
		cfg.Key = DefaultKey
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", cfg.Name, cfg.Key(c))

		allowed, err := store.Allow(c.Request.Context(), key, cfg.Window, cfg.Max)
		if err != nil {
			log.Warn().Err(err).Str("limiter", cfg.Name).Msg("Rate limit store error, failing open")
			c.Next()
			return
		}

		if !allowed {
			retryAfter := int(cfg.Window.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))

			appErr := apperror.RateLimited("Too many requests, please try again later")
			response.FromAppError(c, appErr, "")
			c.Abort()
			return
		}

		c.Next()
	}
}

// DefaultKey: authenticated user id, else caller IP.
func DefaultKey(c *gin.Context) string {
	if id := UserIDFromGin(c); id.String() != "00000000-0000-0000-0000-000000000000" {
		return "user:" + id.String()
	}
	return "ip:" + c.GetString("client_ip")
}

// WebhookKey: path plus caller IP, for unauthenticated webhook endpoints.
func WebhookKey(c *gin.Context) string {
	return "webhook:" + c.FullPath() + ":" + c.GetString("client_ip")
}

// ============================================
// STORES
// ============================================

// RedisRateLimitStore shares counters across instances via INCR + EXPIRE
// (fixed window).
type RedisRateLimitStore struct {
	cache pkgcache.Cache
}

func NewRedisRateLimitStore(cache pkgcache.Cache) *RedisRateLimitStore {
	return &RedisRateLimitStore{cache: cache}
}

func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, error) {
	count, err := s.cache.Increment(ctx, key)
	if err != nil {
		return false, err
	}

	// First hit in the window owns the expiry.
	if count == 1 {
		if err := s.cache.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	return count <= int64(max), nil
}

// MemoryRateLimitStore is the in-process fallback when Redis is absent.
// Limits are then per-process, not shared across instances.
type MemoryRateLimitStore struct {
	mu       sync.Mutex
	limiters map[string]*memoryLimiter
	stopCh   chan struct{}
}

type memoryLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	s := &MemoryRateLimitStore{
		limiters: make(map[string]*memoryLimiter),
		stopCh:   make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

func (s *MemoryRateLimitStore) Allow(_ context.Context, key string, window time.Duration, max int) (bool, error) {
	s.mu.Lock()
	ml, ok := s.limiters[key]
	if !ok {
		// Token bucket equivalent of the fixed window: refill max tokens
		// per window, burst of max.
		ml = &memoryLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(max)/window.Seconds()), max),
		}
		s.limiters[key] = ml
	}
	ml.lastAccess = time.Now()
	s.mu.Unlock()

	return ml.limiter.Allow(), nil
}

func (s *MemoryRateLimitStore) Stop() {
	close(s.stopCh)
}

func (s *MemoryRateLimitStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(10 * time.Minute)
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryRateLimitStore) cleanup(ttl time.Duration) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, ml := range s.limiters {
		if now.Sub(ml.lastAccess) > ttl {
			delete(s.limiters, key)
		}
	}
}
