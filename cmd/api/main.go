package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/admin-console/internal/config"
	"github.com/jwalitptl/admin-console/internal/handler/record"
	"github.com/jwalitptl/admin-console/internal/repository/document"
	"github.com/jwalitptl/admin-console/internal/router"
	"github.com/jwalitptl/admin-console/internal/seed"
	"github.com/jwalitptl/admin-console/pkg/auth"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
	"github.com/jwalitptl/admin-console/pkg/security"
	"github.com/jwalitptl/admin-console/pkg/validator"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config.yml")
	noSeed := pflag.Bool("no-seed", false, "skip demo data")
	pflag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Console:    cfg.Log.Console,
	})
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	ctx := context.Background()
	db, err := document.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database", "driver", cfg.Database.Driver)
	}
	defer db.Close()

	repo := document.NewRecordRepository(db)
	hasher := security.NewBcryptHasher(0)
	v := validator.New()

	if cfg.Seed.Enabled && !*noSeed {
		_, err := seed.Seed(ctx, repo, record.Resources(v, hasher), seed.Options{
			Tenant:        cfg.Seed.Tenant,
			Count:         cfg.Seed.Count,
			Random:        cfg.Seed.Random,
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
		}, log)
		if err != nil {
			log.Fatal(err, "failed to seed demo data", "tenant", cfg.Seed.Tenant)
		}
	}

	deps := router.Dependencies{
		Repo:      repo,
		Hasher:    hasher,
		Validator: v,
		Logger:    log,
		Metrics:   metrics.New("admin_console"),
	}
	if cfg.JWT.Secret != "" {
		deps.JWT = auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	} else {
		log.Warn("jwt.secret is empty, authentication is disabled")
	}

	// Setup router
	r := router.NewRouter(router.RouterConfig{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		Timeout:          cfg.Server.WriteTimeout,
		MaxBodySize:      1 << 20,
	}, deps)
	if err := r.Setup(); err != nil {
		log.Fatal(err, "failed to set up routes")
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info("server listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "server forced to shutdown")
		return
	}

	log.Info("server exited properly")
}
