package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jwalitptl/admin-console/internal/listpage"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/internal/service/customer"
	"github.com/jwalitptl/admin-console/internal/service/lead"
	"github.com/jwalitptl/admin-console/internal/session"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

// Assign hands new leads to a staff member through the lead page's assign
// mode. With --all every new lead on the page is selected.
func (a *App) Assign(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("assign", pflag.ContinueOnError)
	fs.SetOutput(a.out)
	staffRef := fs.String("staff", "", "staff id or name (required)")
	all := fs.Bool("all", false, "assign every new lead on the page")
	limit := fs.Int("limit", 100, "new leads to consider")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.require("leads"); err != nil {
		return err
	}
	if a.session().Role() != session.RoleSuperAdmin {
		return errors.NewForbidden("assigning leads needs a super admin")
	}
	if !*all && fs.NArg() == 0 {
		return errors.NewValidation("leadIds", "pass lead ids or --all")
	}

	staffID, staffName, err := a.resolveStaff(ctx, *staffRef)
	if err != nil {
		return err
	}

	list := listpage.New[model.Lead](a.leads, listpage.Config{
		PageSize: *limit,
		Filters:  lead.Filters,
		Logger:   a.log,
	})
	defer list.Close()
	if err := list.Open(ctx, resource.Query{
		Page:    1,
		Limit:   *limit,
		Filters: map[string]string{"status": model.LeadStatusNew},
	}); err != nil {
		return err
	}

	bulk := listpage.NewBulkAssign[model.Lead](list, a.leads, model.Lead.Eligible)
	bulk.Enter()
	if *all {
		bulk.ToggleAll()
	}
	for _, id := range fs.Args() {
		if err := bulk.Toggle(id); err != nil {
			return err
		}
	}

	selected := bulk.Selected()
	if err := bulk.Assign(ctx, staffID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Assigned %d lead(s) to %s\n", len(selected), staffName)
	return nil
}

// resolveStaff accepts an id or a case-insensitive name from the staff
// directory.
func (a *App) resolveStaff(ctx context.Context, ref string) (string, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", errors.NewValidation("staffId", "--staff is required")
	}

	opts, err := a.staff.Options(ctx)
	if err != nil {
		return "", "", err
	}
	var matches []model.Option
	for _, o := range opts {
		if o.ID == ref {
			return o.ID, o.Name, nil
		}
		if strings.EqualFold(o.Name, ref) {
			matches = append(matches, o)
		}
	}
	switch len(matches) {
	case 0:
		return "", "", errors.NewNotFound("staff", nil)
	case 1:
		return matches[0].ID, matches[0].Name, nil
	default:
		return "", "", errors.NewValidation("staffId", fmt.Sprintf("%d staff members are named %q, use the id", len(matches), ref))
	}
}

// Export downloads the customer spreadsheet into the download directory.
func (a *App) Export(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	fs.SetOutput(a.out)
	userID := fs.String("user", "", "export a single customer")
	dir := fs.String("dir", a.downloadDir, "directory to save into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.require("customers"); err != nil {
		return err
	}

	path, err := a.customers.Export(ctx, *userID, customer.DirSaver{Dir: *dir})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s\n", path)
	return nil
}
