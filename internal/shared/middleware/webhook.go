package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/gin-gonic/gin"

	"snippethub-backend/internal/shared/apperror"
	"snippethub-backend/internal/shared/response"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// WebhookSignature verifies the hex HMAC-SHA256 signature that webhook
// senders put in header over the raw body. The body is restored for the
// handler after reading.
func WebhookSignature(secret, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader(header)
		if signature == "" {
			response.FromAppError(c, apperror.Unauthorized("Missing webhook signature"), "")
			c.Abort()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			response.FromAppError(c, apperror.Validation("unreadable request body", nil), "")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(expected), []byte(signature)) {
			response.FromAppError(c, apperror.Unauthorized("Invalid webhook signature"), "")
			c.Abort()
			return
		}

		c.Next()
	}
}
