package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goodhub-chat/internal/middleware"
	"goodhub-chat/internal/observability"
	"goodhub-chat/internal/telemetry"
)

const requestIDContextKey = "requestID"

func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString(requestIDContextKey); id != "" {
		return id
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	id := middleware.UserID(c)
	if id == uuid.Nil {
		return nil
	}
	value := id.String()
	return &value
}

func emitAudit(ctx context.Context, c *gin.Context, emitter *telemetry.AuditEmitter, text string) {
	emitter.Emit(ctx, "INFO", text, requestIDFromContext(c), userIDFromContext(c))
}
