package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/session"
)

// Auth creates a middleware that resolves the Authorization bearer token into
// a session and attaches it to the request context. Requests without a valid
// session are rejected with 401 before reaching any handler.
func Auth(provider session.Provider, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		s, err := provider.Resolve(c.Request.Context(), token)
		if err != nil {
			requestID := GetRequestID(c)
			log.Warn("Rejected unauthenticated request", map[string]interface{}{
				"request_id": requestID,
				"path":       c.Request.URL.Path,
			})

			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":       "NOT_AUTHENTICATED",
					"message":    "No active session",
					"request_id": requestID,
				},
			})
			c.Abort()
			return
		}

		// Make the session visible to everything downstream of the handler,
		// debounced writes included.
		c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), s))
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
