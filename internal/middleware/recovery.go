package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/httputil"
	"github.com/jwalitptl/admin-console/pkg/logger"
)

// Recovery turns a handler panic into a 500 and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error(fmt.Errorf("panic: %v", rec), "Request panic recovered",
					"stack", string(debug.Stack()),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"client_ip", c.ClientIP(),
					"request_id", GetRequestID(c))

				httputil.RespondError(c, errors.NewInternal(nil))
			}
		}()
		c.Next()
	}
}
