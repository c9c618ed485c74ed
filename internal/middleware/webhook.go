package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-portal-api/internal/response"
)

// WebhookSecretHeader carries the shared secret on webhook deliveries
const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookAuth returns a middleware that checks the shared webhook secret.
// An empty configured secret disables the check.
func WebhookAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		presented := c.GetHeader(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid webhook secret")
			c.Abort()
			return
		}
		c.Next()
	}
}
