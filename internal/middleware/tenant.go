package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/pkg/httputil"
)

const (
	HeaderTenant  = "x-tenant"
	ContextTenant = "tenant"
)

type TenantConfig struct {
	// SkipPaths are served without a tenant (health, metrics).
	SkipPaths []string
}

func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// Tenant requires the x-tenant header on every request outside SkipPaths and
// stores it for handlers.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		tenant := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderTenant)))
		if tenant == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, httputil.Response{
				Success: false,
				Message: "x-tenant header is required",
			})
			return
		}

		c.Set(ContextTenant, tenant)
		c.Next()
	}
}

// GetTenant returns the tenant Tenant stored, or "".
func GetTenant(c *gin.Context) string {
	return c.GetString(ContextTenant)
}
