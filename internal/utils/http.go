package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetRealClientIP returns the address a client claims to come from, for
// request logs only. The headers are caller-controlled, so anything that
// enforces limits must use c.ClientIP() instead. Order is X-Real-IP, then the
// first hop of X-Forwarded-For, then gin's own resolution.
func GetRealClientIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}

	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	return c.ClientIP()
}
