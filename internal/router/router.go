package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/admin-console/internal/handler"
	authhandler "github.com/jwalitptl/admin-console/internal/handler/auth"
	customerhandler "github.com/jwalitptl/admin-console/internal/handler/customer"
	"github.com/jwalitptl/admin-console/internal/handler/health"
	leadhandler "github.com/jwalitptl/admin-console/internal/handler/lead"
	prometheushandler "github.com/jwalitptl/admin-console/internal/handler/prometheus"
	"github.com/jwalitptl/admin-console/internal/handler/record"
	"github.com/jwalitptl/admin-console/internal/middleware"
	"github.com/jwalitptl/admin-console/internal/repository"
	"github.com/jwalitptl/admin-console/pkg/auth"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
	"github.com/jwalitptl/admin-console/pkg/security"
	"github.com/jwalitptl/admin-console/pkg/validator"
)

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	Timeout          time.Duration
	MaxBodySize      int64
}

// Dependencies are the collaborators the routes are built from. A nil JWT
// turns authentication off and leaves every route open.
type Dependencies struct {
	Repo      repository.RecordRepository
	JWT       auth.JWTService
	Hasher    security.PasswordHasher
	Validator validator.Validator
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
}

type Router struct {
	engine *gin.Engine
	cfg    RouterConfig
	deps   Dependencies
	auth   *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig, deps Dependencies) *Router {
	if deps.Hasher == nil {
		deps.Hasher = security.NewBcryptHasher(0)
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	deps.Logger = logger.OrNop(deps.Logger)

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
		deps:   deps,
	}
	if deps.JWT != nil {
		r.auth = middleware.NewAuthMiddleware(deps.JWT)
	}
	return r
}

// Setup installs the middleware chain and every route.
func (r *Router) Setup() error {
	r.engine.Use(
		middleware.RequestID(),
		middleware.Recovery(r.deps.Logger),
		middleware.Logger(r.deps.Logger),
		middleware.Metrics(r.deps.Metrics),
		middleware.ErrorHandler(r.deps.Logger),
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.cfg.Timeout}),
		middleware.Tenant(middleware.DefaultTenantConfig()),
	)
	if r.cfg.MaxBodySize > 0 {
		r.engine.Use(middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: r.cfg.MaxBodySize}))
	}
	if r.cfg.RateLimitEnabled {
		r.engine.Use(middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.cfg.RateLimit,
			Burst: r.cfg.RateBurst,
		}).RateLimit())
	}

	root := r.engine.Group("")

	// Health and metrics skip the tenant check.
	health.NewHandler(r.deps.Repo).RegisterRoutes(root)
	prom, err := prometheushandler.New(r.deps.Metrics)
	if err != nil {
		return err
	}
	prom.RegisterRoutes(root)

	// Public routes
	if r.deps.JWT != nil {
		authhandler.NewHandler(r.deps.Repo, r.deps.JWT, r.deps.Hasher).RegisterRoutes(root)
	}

	// Protected routes
	protected := r.engine.Group("")
	var adminOnly gin.HandlerFunc
	if r.auth != nil {
		protected.Use(r.auth.Authenticate())
		adminOnly = r.auth.RequireSuperAdmin()
	}

	handlers := []handler.Handler{
		leadhandler.NewHandler(r.deps.Repo),
		customerhandler.NewHandler(r.deps.Repo),
	}
	for _, res := range record.Resources(r.deps.Validator, r.deps.Hasher) {
		handlers = append(handlers, record.NewHandler(r.deps.Repo, res, adminOnly))
	}
	for _, h := range handlers {
		h.RegisterRoutes(protected)
	}
	return nil
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Use(middleware ...gin.HandlerFunc) {
	r.engine.Use(middleware...)
}
