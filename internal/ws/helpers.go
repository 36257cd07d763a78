package ws

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goodhub-chat/internal/middleware"
)

func newConnID() string {
	return uuid.NewString()
}

// tokenFromRequest prefers the Authorization header and falls back to the
// token query parameter, since browsers cannot set headers on upgrades.
func tokenFromRequest(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		return middleware.BearerToken(header)
	}
	token := c.Query("token")
	return token, token != ""
}
