package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/pkg/logger"
)

// Logger logs one line per request once the handler chain has finished.
// Bodies are never logged: staff and login payloads carry passwords.
func Logger(log *logger.Logger) gin.HandlerFunc {
	zl := logger.OrNop(log).Zerolog()

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		event := zl.Info()
		msg := "Request processed"
		switch {
		case statusCode >= 500:
			event = zl.Error()
			msg = "Server error"
		case statusCode >= 400:
			event = zl.Warn()
			msg = "Client error"
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("tenant", GetTenant(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", statusCode).
			Int("size", c.Writer.Size()).
			Dur("duration", latency).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
