package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromGin, fromCtx string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		fromGin = c.GetString("request_id")
		fromCtx = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, fromGin)
	assert.Equal(t, fromGin, fromCtx)
	assert.Equal(t, fromGin, w.Header().Get(RequestIDHeader))

	_, err := uuid.Parse(fromGin)
	assert.NoError(t, err, "generated ids are UUIDs")
}

func TestRequestIDKeepsIncoming(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "trace-abc-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestIDRejectsOversized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 65))
	router.ServeHTTP(w, req)

	got := w.Header().Get(RequestIDHeader)
	assert.NotEqual(t, strings.Repeat("x", 65), got)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}
