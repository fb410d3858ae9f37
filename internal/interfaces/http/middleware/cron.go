package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CronSecretHeader is the header external cron services send the shared
// secret in. A Bearer token in the Authorization header is also accepted
// since some schedulers only support that.
const CronSecretHeader = "X-Cron-Secret"

// CronSecret guards the external cron trigger endpoint with a shared secret
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_SERVICE_UNAVAILABLE",
					"message": "Cron endpoint is not configured",
				},
			})
			return
		}

		provided := c.GetHeader(CronSecretHeader)
		if provided == "" {
			if authHeader := c.GetHeader(AuthHeaderKey); strings.HasPrefix(authHeader, BearerPrefix) {
				provided = strings.TrimPrefix(authHeader, BearerPrefix)
			}
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_UNAUTHORIZED",
					"message": "Invalid cron secret",
				},
			})
			return
		}

		c.Next()
	}
}
