// Package cli is the terminal front end of the console. Every command drives
// the same services and page controllers a browser build would.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/adrg/xdg"

	"github.com/jwalitptl/admin-console/internal/config"
	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/navigation"
	"github.com/jwalitptl/admin-console/internal/service/calllog"
	"github.com/jwalitptl/admin-console/internal/service/certificate"
	"github.com/jwalitptl/admin-console/internal/service/customer"
	"github.com/jwalitptl/admin-console/internal/service/faq"
	"github.com/jwalitptl/admin-console/internal/service/lead"
	"github.com/jwalitptl/admin-console/internal/service/role"
	"github.com/jwalitptl/admin-console/internal/service/staff"
	"github.com/jwalitptl/admin-console/internal/session"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

type Options struct {
	Config *config.Config
	Store  session.Store
	Out    io.Writer
	Logger *logger.Logger
	// Metrics is optional.
	Metrics *metrics.Metrics
	// DownloadDir receives exports; the user's download directory when empty.
	DownloadDir string
}

type App struct {
	cfg         *config.Config
	out         io.Writer
	log         *logger.Logger
	store       session.Store
	holder      *session.Holder
	client      *httpclient.Client
	downloadDir string

	customers *customer.Service
	leads     *lead.Service
	staff     *staff.Service
	roles     *role.Service
	tables    map[string]table
}

type command func(ctx context.Context, args []string) error

// New restores the saved session and builds one service per entity. A token
// in the client config signs in when nothing is saved.
func New(ctx context.Context, opts Options) *App {
	log := logger.OrNop(opts.Logger)
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	sess := session.Load(ctx, opts.Store, log)
	if sess.IsAnonymous() && cfg.Client.Token != "" {
		if s, err := session.FromToken(cfg.Client.Token); err == nil {
			sess = s
		} else {
			log.Warn("ignoring configured token", "error", err.Error())
		}
	}
	holder := session.NewHolder(sess)

	clientOpts := []httpclient.Option{httpclient.WithLogger(log), httpclient.WithMetrics(opts.Metrics)}
	if cfg.Client.BreakerFailures > 0 {
		clientOpts = append(clientOpts, httpclient.WithBreaker(
			httpclient.NewBreaker(cfg.Client.BreakerFailures, cfg.Client.BreakerCooldown)))
	}
	client := httpclient.New(httpclient.Config{
		BaseURL:  cfg.Client.BaseURL,
		Hostname: cfg.Client.Hostname,
		Tenant:   cfg.Client.Tenant,
		Timeout:  cfg.Client.Timeout,
	}, holder, clientOpts...)

	dir := opts.DownloadDir
	if dir == "" {
		dir = xdg.UserDirs.Download
	}

	a := &App{
		cfg:         cfg,
		out:         opts.Out,
		log:         log,
		store:       opts.Store,
		holder:      holder,
		client:      client,
		downloadDir: dir,
		customers:   customer.NewService(client, log, opts.Metrics),
		leads:       lead.NewService(client, log, opts.Metrics),
		staff:       staff.NewService(client, log, opts.Metrics),
		roles:       role.NewService(client, log, opts.Metrics),
	}
	a.tables = a.buildTables(
		faq.NewService(client, log, opts.Metrics),
		certificate.NewService(client, log, opts.Metrics),
		calllog.NewService(client, log, opts.Metrics),
	)
	return a
}

func (a *App) commands() map[string]command {
	return map[string]command{
		"login":    a.Login,
		"logout":   a.Logout,
		"whoami":   a.WhoAmI,
		"menu":     a.Menu,
		"list":     a.List,
		"get":      a.Get,
		"delete":   a.Delete,
		"assign":   a.Assign,
		"export":   a.Export,
		"template": a.Template,
	}
}

// Run executes one command line, e.g. ["list", "customers", "--page", "2"].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.Usage()
		return nil
	}
	cmd, ok := a.commands()[args[0]]
	if !ok {
		a.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, args[1:])
}

func (a *App) Usage() {
	names := make([]string, 0, len(a.tables))
	for name := range a.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(a.out, `Usage: console <command> [flags]

Commands:
  login --email E --password P     sign in and remember the session
  logout                           forget the session
  whoami                           show the signed-in user
  menu                             list the pages you can open
  list <resource> [flags]          show one page of a resource
  get <resource> <id>              show one record
  delete <resource> <id>           delete one record
  assign --staff S [lead ids]      assign new leads to a staff member
  export [--user ID]               download customers as a spreadsheet
  template [--variant id=variant]  preview the custom product template

Resources: %s
`, strings.Join(names, ", "))
}

func (a *App) session() session.Session {
	return a.holder.Get()
}

// require checks that the signed-in user may open the menu entry key.
func (a *App) require(key string) error {
	sess := a.session()
	if sess.IsAnonymous() {
		err := errors.Unauthorized(nil)
		err.Message = "not signed in, run console login"
		return err
	}
	if !navigation.Allowed(sess, key) {
		return errors.NewForbidden(fmt.Sprintf("%s needs a super admin", key))
	}
	return nil
}
