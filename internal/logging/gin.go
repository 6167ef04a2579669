package logging

import (
	"time"

	"leadcaller/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 64

// requestID reuses an inbound id only when it is short and made of
// [A-Za-z0-9._:-], so it cannot inject into headers or log lines.
func requestID(inbound string) string {
	if inbound == "" || len(inbound) > maxRequestIDLen {
		return uuid.NewString()
	}
	for _, r := range inbound {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == ':':
		default:
			return uuid.NewString()
		}
	}
	return inbound
}

// GinLogger logs one line per request and tags it with a request id, reusing
// a well-formed inbound X-Request-ID when the caller supplied one.
func GinLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := requestID(c.GetHeader(RequestIDHeader))
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", Since(start)).
			Str("client_ip", utils.GetRealClientIP(c)).
			Msg("request")
	}
}
