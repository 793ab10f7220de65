package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	authhandler "github.com/jwalitptl/admin-console/internal/handler/auth"
	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/navigation"
	"github.com/jwalitptl/admin-console/internal/session"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

// Login exchanges email and password for a token and saves the session it
// describes.
func (a *App) Login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.StringP("email", "e", "", "staff email (required)")
	password := fs.StringP("password", "p", "", "password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.NewValidation("email", "--email and --password are required")
	}

	resp, err := a.client.Do(ctx, httpclient.Request{
		Resource: "auth",
		Method:   http.MethodPost,
		Path:     authhandler.LoginPath,
		Body:     authhandler.LoginRequest{Email: *email, Password: *password},
	})
	if err != nil {
		return err
	}

	var body struct {
		Data authhandler.LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.Data.Token == "" {
		return errors.NewRequest(resp.Status, "login response carried no token", err)
	}

	sess, err := session.FromToken(body.Data.Token)
	if err != nil {
		return errors.NewRequest(resp.Status, "login response carried an unreadable token", err)
	}
	if err := session.Save(ctx, a.store, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	a.holder.Set(sess)

	a.log.Info("signed in", "user_id", sess.UserID, "tenant", a.client.Tenant())
	fmt.Fprintf(a.out, "Signed in as %s (%s) on %s\n", sess.Name, sess.Role(), a.client.Tenant())
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	a.holder.Set(session.Anonymous())
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) WhoAmI(_ context.Context, _ []string) error {
	sess := a.session()
	if sess.IsAnonymous() {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s\n", sess.Name)
	fmt.Fprintf(tw, "Email\t%s\n", sess.Email)
	fmt.Fprintf(tw, "User ID\t%s\n", sess.UserID)
	fmt.Fprintf(tw, "Role\t%s\n", sess.Role())
	fmt.Fprintf(tw, "Tenant\t%s\n", a.client.Tenant())
	if sess.ExpiresAt != nil {
		fmt.Fprintf(tw, "Expires\t%s\n", sess.ExpiresAt.Local().Format(time.RFC1123))
	}
	return tw.Flush()
}

// Menu prints the pages the signed-in user can open.
func (a *App) Menu(_ context.Context, _ []string) error {
	items := navigation.Items(a.session())
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Sign in to see the menu")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tCOMMAND")
	for _, item := range items {
		cmd := "list " + item.Key
		if _, ok := a.tables[item.Key]; !ok {
			cmd = "template"
		}
		fmt.Fprintf(tw, "%s\t%s\n", item.Label, cmd)
	}
	return tw.Flush()
}
