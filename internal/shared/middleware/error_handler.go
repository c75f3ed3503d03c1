package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"snippethub-backend/internal/infrastructure/errortrack"
	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/response"
)

// ErrorHandler is the single place errors become HTTP responses.
// Handlers attach failures with c.Error(err) and return; this middleware
// normalizes them through the taxonomy, logs full context, forwards
// server faults to the tracker and renders the envelope.
func ErrorHandler(env string, tracker errortrack.Notifier) gin.HandlerFunc {
	isDev := env == "development"

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// Only the last error drives the response; earlier ones are logged.
		err := c.Errors.Last().Err
		appErr := apperror.From(err)

		logEvent := log.Error()
		if appErr.Kind.Status() < 500 {
			logEvent = log.Warn()
		}
		logEvent.
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("user_id", userIDString(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Str("kind", appErr.Kind.Code()).
			Msg("Request failed")

		if appErr.Kind == apperror.KindInternal && tracker != nil {
			tracker.Notify(c.Request.Context(), err, c.GetString("request_id"), map[string]interface{}{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			})
		}

		// Stack traces never leave development mode.
		stack := ""
		if isDev && appErr.Kind == apperror.KindInternal {
			stack = string(debug.Stack())
		}

		if c.Writer.Written() {
			return
		}
		response.FromAppError(c, appErr, stack)
	}
}

func userIDString(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(interface{ String() string }); ok {
			return id.String()
		}
	}
	return ""
}
