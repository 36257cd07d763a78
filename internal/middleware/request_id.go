package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goodhub-chat/internal/observability"
)

// RequestID makes sure every request carries an X-Request-Id, echoing it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := observability.RequestIDFromRequest(c.Request)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(observability.RequestIDHeader, id)
		}
		c.Writer.Header().Set(observability.RequestIDHeader, id)
		c.Set("requestID", id)
		c.Next()
	}
}
