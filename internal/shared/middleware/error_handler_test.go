package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippethub-backend/internal/infrastructure/errortrack"
	"snippethub-backend/internal/shared/apperror"
)

type envelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Code      string          `json:"code"`
		Message   string          `json:"message"`
		Details   json.RawMessage `json:"details"`
		RequestID string          `json:"requestId"`
		Stack     string          `json:"stack"`
	} `json:"error"`
}

func errorRouter(env string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), ErrorHandler(env, errortrack.NopNotifier{}))
	router.GET("/", handler)
	return router
}

func TestErrorHandlerRendersTaxonomy(t *testing.T) {
	router := errorRouter("production", func(c *gin.Context) {
		c.Error(apperror.NotFound("Snippet not found"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "Snippet not found", body.Error.Message)
	assert.NotEmpty(t, body.Error.RequestID)
	assert.Empty(t, body.Error.Stack)
}

func TestErrorHandlerHidesInternalDetails(t *testing.T) {
	router := errorRouter("production", func(c *gin.Context) {
		c.Error(errors.New("pq: connection refused on 10.0.0.5"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "10.0.0.5", "causes never leak to clients")
	assert.Empty(t, body.Error.Stack, "no stack outside development")
}

func TestErrorHandlerDevStack(t *testing.T) {
	router := errorRouter("development", func(c *gin.Context) {
		c.Error(errors.New("boom"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error.Stack, "development exposes the stack")
}

func TestErrorHandlerValidationDetails(t *testing.T) {
	router := errorRouter("production", func(c *gin.Context) {
		c.Error(apperror.Validation("invalid request", []apperror.FieldError{
			{Field: "name", Message: "cannot be blank", Code: "required"},
		}))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Contains(t, string(body.Error.Details), "cannot be blank")
}

func TestErrorHandlerSkipsSuccessfulRequests(t *testing.T) {
	router := errorRouter("production", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}
