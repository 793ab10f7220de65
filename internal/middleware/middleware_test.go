package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/pkg/auth"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tenant": GetTenant(c), "request_id": GetRequestID(c)})
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTenantRequired(t *testing.T) {
	r := gin.New()
	r.Use(Tenant(DefaultTenantConfig()))
	r.GET("/api/customers", ok)
	r.GET("/health/live", ok)

	w := do(r, http.MethodGet, "/api/customers", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "x-tenant")

	w = do(r, http.MethodGet, "/api/customers", map[string]string{HeaderTenant: " Acme "})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tenant":"acme"`)

	w = do(r, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDEchoesOrMints(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", ok)

	w := do(r, http.MethodGet, "/", map[string]string{HeaderXRequestID: "abc"})
	assert.Equal(t, "abc", w.Header().Get(HeaderXRequestID))

	w = do(r, http.MethodGet, "/", map[string]string{HeaderXRequestID: strings.Repeat("x", 200)})
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
}

func TestAuthenticate(t *testing.T) {
	jwt := auth.NewJWTService("s3cret", time.Hour)
	m := NewAuthMiddleware(jwt)

	r := gin.New()
	r.Use(Tenant(DefaultTenantConfig()))
	r.GET("/api/leads", m.Authenticate(), ok)
	r.GET("/api/roles", m.Authenticate(), m.RequireSuperAdmin(), ok)

	staffToken, _, err := jwt.GenerateAccessToken(auth.Subject{UserID: "u1", Tenant: "acme"})
	require.NoError(t, err)
	adminToken, _, err := jwt.GenerateAccessToken(auth.Subject{UserID: "u2", Tenant: "acme", SuperAdmin: true})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		tenant string
		auth   string
		want   int
	}{
		{"missing header", "/api/leads", "acme", "", http.StatusUnauthorized},
		{"bad scheme", "/api/leads", "acme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "/api/leads", "acme", "Bearer nope", http.StatusUnauthorized},
		{"other tenant", "/api/leads", "beta", "Bearer " + staffToken, http.StatusForbidden},
		{"staff ok", "/api/leads", "acme", "Bearer " + staffToken, http.StatusOK},
		{"staff on admin route", "/api/roles", "acme", "Bearer " + staffToken, http.StatusForbidden},
		{"admin on admin route", "/api/roles", "acme", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{HeaderTenant: tt.tenant}
			if tt.auth != "" {
				headers["Authorization"] = tt.auth
			}
			w := do(r, http.MethodGet, tt.path, headers)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRateLimitPerTenant(t *testing.T) {
	r := gin.New()
	r.Use(Tenant(DefaultTenantConfig()), NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1}).RateLimit())
	r.GET("/api/faqs", ok)

	acme := map[string]string{HeaderTenant: "acme"}
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/faqs", acme).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/api/faqs", acme).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/faqs", map[string]string{HeaderTenant: "beta"}).Code)
}

func TestRecoveryAndErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(nil), ErrorHandler(nil))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(errors.NewNotFound("lead", nil)) })

	w := do(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"lead not found"}`, w.Body.String())
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 8}))
	r.POST("/", ok)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"far too long"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestMetricsUseRouteTemplate(t *testing.T) {
	m := metrics.New("test")
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/leads/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	do(r, http.MethodGet, "/api/leads/42", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServerRequests.WithLabelValues("GET", "/api/leads/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServerErrors.WithLabelValues("GET", "/api/leads/:id", "client")))
}
