package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/httputil"
	"github.com/jwalitptl/admin-console/pkg/logger"
)

// ErrorHandler answers for handlers that recorded an error with c.Error
// instead of writing a response themselves.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last()
		status := errors.StatusOf(last.Err)
		if status >= 500 || status == 0 {
			log.Error(last.Err, "Request error",
				"request_id", GetRequestID(c),
				"path", c.Request.URL.Path,
				"method", c.Request.Method)
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondError(c, last.Err)
	}
}
