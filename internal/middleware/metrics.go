package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/pkg/metrics"
)

// Metrics records request counts, latency and errors by route template so
// record ids do not explode the label space.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.ServerLatency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.ServerRequests.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			kind := "client"
			if c.Writer.Status() >= 500 {
				kind = "server"
			}
			m.ServerErrors.WithLabelValues(c.Request.Method, path, kind).Inc()
		}
	}
}
