package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/jwalitptl/admin-console/internal/formpage"
	"github.com/jwalitptl/admin-console/internal/listpage"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/pagination"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/internal/service/calllog"
	"github.com/jwalitptl/admin-console/internal/service/certificate"
	"github.com/jwalitptl/admin-console/internal/service/customer"
	"github.com/jwalitptl/admin-console/internal/service/faq"
	"github.com/jwalitptl/admin-console/internal/service/lead"
	"github.com/jwalitptl/admin-console/internal/service/staff"
	"github.com/jwalitptl/admin-console/internal/session"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
)

// store is what a table needs from an entity service.
type store[T resource.Record] interface {
	listpage.Lister[T]
	formpage.Mutator[T]
	SupportsGetByID() bool
}

// table is one resource the console can list, show and delete.
type table interface {
	list(ctx context.Context, w io.Writer, sess session.Session, q resource.Query) error
	get(ctx context.Context, w io.Writer, id string) error
	remove(ctx context.Context, w io.Writer, id string, q resource.Query) error
}

type entity[T resource.Record] struct {
	store   store[T]
	filters []resource.Filter
	columns []string
	row     func(T) []string
	// labels, when set, resolves ids shown in rows (role names for staff).
	labels   func(ctx context.Context) (map[string]string, error)
	labelled func(T, map[string]string) []string
	log      *logger.Logger
	pageSize int
}

func (e *entity[T]) controller() *listpage.Controller[T] {
	return listpage.New[T](e.store, listpage.Config{
		PageSize: e.pageSize,
		Filters:  e.filters,
		Logger:   e.log,
	})
}

func (e *entity[T]) list(ctx context.Context, w io.Writer, sess session.Session, q resource.Query) error {
	if err := checkFilters(sess, e.filters, q.Filters); err != nil {
		return err
	}

	c := e.controller()
	defer c.Close()
	if err := c.Open(ctx, q); err != nil {
		return err
	}

	rows := e.row
	if e.labels != nil {
		labels, err := e.labels(ctx)
		if err != nil {
			e.log.Warn("labels unavailable, showing ids", "error", err.Error())
		}
		rows = func(rec T) []string { return e.labelled(rec, labels) }
	}

	v := c.View()
	if len(v.Items) == 0 {
		fmt.Fprintf(w, "No %s found\n", e.store.Name())
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(e.columns, "\t"))
	for _, rec := range v.Items {
		fmt.Fprintln(tw, strings.Join(dash(rows(rec)), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := v.Pagination
	fmt.Fprintf(w, "\nPage %d of %d (%d total)  %s\n", p.Page, p.TotalPages, p.Total,
		strings.Join(markCurrent(v.Window, p.Page), " "))
	return nil
}

func (e *entity[T]) get(ctx context.Context, w io.Writer, id string) error {
	form := formpage.New[T](e.store, formpage.Config[T]{
		Mode:   formpage.Edit,
		ID:     id,
		Logger: e.log,
	})
	if err := form.Load(ctx); err != nil {
		return err
	}

	data, err := json.MarshalIndent(form.Form(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// remove deletes through the list page so the confirmation flow and the
// refresh afterwards are the ones the table uses.
func (e *entity[T]) remove(ctx context.Context, w io.Writer, id string, q resource.Query) error {
	c := e.controller()
	defer c.Close()
	if err := c.Open(ctx, q); err != nil {
		return err
	}

	err := c.RequestDelete(id)
	if errors.Is(err, errors.ErrNotFound) && e.store.SupportsGetByID() {
		// Not on this page; fetching it puts it in the cached list.
		if _, err = e.store.FetchByID(ctx, id); err != nil {
			return err
		}
		err = c.RequestDelete(id)
	}
	if err != nil {
		return err
	}

	if err := c.ConfirmDelete(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, c.View().Popup.Message)
	return nil
}

// checkFilters rejects filters the list does not offer to sess.
func checkFilters(sess session.Session, offered []resource.Filter, filters map[string]string) error {
	for key := range filters {
		allowed := false
		for _, f := range offered {
			if f.Key == key {
				allowed = !f.SuperAdminOnly || sess.Role() == session.RoleSuperAdmin
				break
			}
		}
		if !allowed {
			return errors.NewValidation("filter", fmt.Sprintf("filter %q is not available", key))
		}
	}
	return nil
}

func markCurrent(window []pagination.Item, current int) []string {
	out := make([]string, 0, len(window))
	for _, item := range window {
		if !item.Ellipsis && item.Page == current {
			out = append(out, "["+item.String()+"]")
			continue
		}
		out = append(out, item.String())
	}
	return out
}

func dash(cells []string) []string {
	for i, c := range cells {
		if c == "" {
			cells[i] = "-"
		}
	}
	return cells
}

func (a *App) buildTables(faqs *faq.Service, certs *certificate.Service, calls *calllog.Service) map[string]table {
	size := a.cfg.Client.PageSize
	return map[string]table{
		"customers": &entity[model.Customer]{
			store: a.customers, filters: customer.Filters, log: a.log, pageSize: size,
			columns: []string{"ID", "NAME", "EMAIL", "PHONE", "COMPANY", "STATUS"},
			row: func(c model.Customer) []string {
				return []string{c.ID, c.Name, c.Email, c.Phone, c.Company, c.Status}
			},
		},
		"leads": &entity[model.Lead]{
			store: a.leads, filters: lead.Filters, log: a.log, pageSize: size,
			columns: []string{"ID", "NAME", "EMAIL", "SOURCE", "STATUS", "ASSIGNED TO"},
			row: func(l model.Lead) []string {
				return []string{l.ID, l.Name, l.Email, l.Source, l.Status, l.AssignedTo}
			},
			labels: a.staffNames,
			labelled: func(l model.Lead, names map[string]string) []string {
				return []string{l.ID, l.Name, l.Email, l.Source, l.Status, label(names, l.AssignedTo)}
			},
		},
		"staff": &entity[model.Staff]{
			store: a.staff, filters: staff.Filters, log: a.log, pageSize: size,
			columns: []string{"ID", "NAME", "EMAIL", "ROLE", "STATUS", "SUPER ADMIN"},
			row: func(s model.Staff) []string {
				return []string{s.ID, s.Name, s.Email, s.RoleID, s.Status, strconv.FormatBool(s.SuperAdmin)}
			},
			labels: a.roleNames,
			labelled: func(s model.Staff, names map[string]string) []string {
				return []string{s.ID, s.Name, s.Email, label(names, s.RoleID), s.Status, strconv.FormatBool(s.SuperAdmin)}
			},
		},
		"roles": &entity[model.Role]{
			store: a.roles, log: a.log, pageSize: size,
			columns: []string{"ID", "NAME", "DESCRIPTION", "PERMISSIONS"},
			row: func(r model.Role) []string {
				return []string{r.ID, r.Name, r.Description, strings.Join(r.Permissions, ",")}
			},
		},
		"faqs": &entity[model.FAQ]{
			store: faqs, filters: faq.Filters, log: a.log, pageSize: size,
			columns: []string{"ID", "QUESTION", "CATEGORY", "POSITION"},
			row: func(f model.FAQ) []string {
				return []string{f.ID, f.Question, f.Category, strconv.Itoa(f.Position)}
			},
		},
		"certificates": &entity[model.Certificate]{
			store: certs, log: a.log, pageSize: size,
			columns: []string{"ID", "TITLE", "ISSUER", "ISSUED ON"},
			row: func(c model.Certificate) []string {
				return []string{c.ID, c.Title, c.Issuer, c.IssuedOn}
			},
		},
		"call-logs": &entity[model.CallLog]{
			store: calls, filters: calllog.Filters, log: a.log, pageSize: size,
			columns: []string{"ID", "CALLER", "RECEIVER", "DIRECTION", "STATUS", "DURATION"},
			row: func(c model.CallLog) []string {
				return []string{c.ID, c.Caller, c.Receiver, c.Direction, c.Status, strconv.Itoa(c.Duration) + "s"}
			},
		},
	}
}

func (a *App) staffNames(ctx context.Context) (map[string]string, error) {
	opts, err := a.staff.Options(ctx)
	return optionNames(opts), err
}

func (a *App) roleNames(ctx context.Context) (map[string]string, error) {
	opts, err := a.roles.Options(ctx)
	return optionNames(opts), err
}

func optionNames(opts []model.Option) map[string]string {
	names := make(map[string]string, len(opts))
	for _, o := range opts {
		names[o.ID] = o.Name
	}
	return names
}

func label(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

// listFlags are the query flags shared by list and delete.
type listFlags struct {
	page    int
	limit   int
	search  string
	sortBy  string
	order   string
	filters map[string]string
}

func (a *App) newListFlags(name string) (*pflag.FlagSet, *listFlags) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	lf := &listFlags{}
	fs.IntVar(&lf.page, "page", 1, "page number")
	fs.IntVar(&lf.limit, "limit", a.cfg.Client.PageSize, "rows per page")
	fs.StringVarP(&lf.search, "search", "s", "", "search text")
	fs.StringVar(&lf.sortBy, "sort", "", "sort field")
	fs.StringVar(&lf.order, "order", "", "sort order (asc or desc)")
	fs.StringToStringVarP(&lf.filters, "filter", "f", nil, "filter as key=value, repeatable")
	return fs, lf
}

func (lf *listFlags) query() resource.Query {
	q := resource.Query{
		Page:      lf.page,
		Limit:     lf.limit,
		Search:    strings.TrimSpace(lf.search),
		SortBy:    lf.sortBy,
		SortOrder: lf.order,
	}
	for k, v := range lf.filters {
		q = q.WithFilter(k, v)
	}
	return q
}

func (a *App) table(name string) (table, error) {
	t, ok := a.tables[name]
	if !ok {
		return nil, errors.NewValidation("resource", fmt.Sprintf("unknown resource %q", name))
	}
	if err := a.require(name); err != nil {
		return nil, err
	}
	return t, nil
}

func (a *App) List(ctx context.Context, args []string) error {
	fs, lf := a.newListFlags("list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: list <resource> [flags]")
	}

	t, err := a.table(fs.Arg(0))
	if err != nil {
		return err
	}
	return t.list(ctx, a.out, a.session(), lf.query())
}

func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: get <resource> <id>")
	}
	t, err := a.table(args[0])
	if err != nil {
		return err
	}
	return t.get(ctx, a.out, args[1])
}

func (a *App) Delete(ctx context.Context, args []string) error {
	fs, lf := a.newListFlags("delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: delete <resource> <id>")
	}

	t, err := a.table(fs.Arg(0))
	if err != nil {
		return err
	}
	return t.remove(ctx, a.out, fs.Arg(1), lf.query())
}
