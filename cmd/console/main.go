package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jwalitptl/admin-console/internal/cli"
	"github.com/jwalitptl/admin-console/internal/config"
	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/session"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config.yml")
	verbose := pflag.BoolP("verbose", "v", false, "log requests to stderr")
	// Everything after the command name belongs to the command.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if !*verbose && level < logger.WarnLevel {
		level = logger.WarnLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.Kitchen,
		Output:     os.Stderr,
		Console:    true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err, "failed to open session store", "backend", cfg.Session.Backend)
	}

	app := cli.New(ctx, cli.Options{
		Config: cfg,
		Store:  store,
		Out:    os.Stdout,
		Logger: log,
	})
	if err := app.Run(ctx, pflag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", errors.Message(err, err.Error()))
		os.Exit(1)
	}
}

// openStore picks the session backend. Redis sessions are keyed per tenant so
// one server can hold sessions for several consoles.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return session.NewFileStore(cfg.Session.Path), nil
	}
	tenant := cfg.Client.Tenant
	if tenant == "" {
		tenant = httpclient.TenantFromHost(cfg.Client.Hostname)
	}
	return session.OpenRedisStore(ctx, cfg.Session.RedisURL, cfg.Session.KeyPrefix, tenant, cfg.Session.TTL)
}
