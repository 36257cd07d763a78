package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goodhub-chat/internal/cache"
	"goodhub-chat/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, profileCache *cache.Cache, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitAudit(c.Request.Context(), c, emitter, "audit test")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/cache", func(c *gin.Context) {
		if profileCache == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not configured"})
			return
		}
		c.JSON(http.StatusOK, profileCache.Snapshot())
	})
}
