// Package listpage is the view-model behind every table page: it owns the
// search box, filters, sort, paging and the delete confirmation, and drives
// the entity's resource store.
package listpage

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/admin-console/internal/debounce"
	"github.com/jwalitptl/admin-console/internal/pagination"
	"github.com/jwalitptl/admin-console/internal/popup"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/internal/session"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
)

type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Errored
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "idle"
	}
}

// Lister is the store a list page drives.
type Lister[T resource.Record] interface {
	Name() string
	FetchList(ctx context.Context, q resource.Query) (resource.Page[T], error)
	Delete(ctx context.Context, id string) (string, error)
	Snapshot() resource.State[T]
}

type Config struct {
	PageSize       int
	SearchDebounce time.Duration
	// FetchTimeout bounds fetches started by the debounced search.
	FetchTimeout time.Duration
	Filters      []resource.Filter
	// AfterFunc replaces the debounce clock.
	AfterFunc debounce.AfterFunc
	Popup     *popup.Popup
	Logger    *logger.Logger
}

// DeleteState is the confirmation modal.
type DeleteState[T resource.Record] struct {
	Open    bool
	Target  T
	Pending bool
}

// View is everything a table page renders.
type View[T resource.Record] struct {
	Status      Status
	Items       []T
	Pagination  resource.Pagination
	Query       resource.Query
	SearchInput string
	Error       string
	Window      []pagination.Item
	Delete      DeleteState[T]
	Popup       popup.State
}

type Controller[T resource.Record] struct {
	store     Lister[T]
	cfg       Config
	popup     *popup.Popup
	logger    *logger.Logger
	debouncer *debounce.Debouncer[string]

	mu          sync.Mutex
	status      Status
	query       resource.Query
	searchInput string
	err         string
	target      *T
	deleting    bool
}

func New[T resource.Record](store Lister[T], cfg Config) *Controller[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = resource.DefaultLimit
	}
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = debounce.DefaultDelay
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.Popup == nil {
		cfg.Popup = &popup.Popup{}
	}

	c := &Controller[T]{
		store:  store,
		cfg:    cfg,
		popup:  cfg.Popup,
		logger: logger.OrNop(cfg.Logger).WithFields(map[string]interface{}{"page": store.Name()}),
		query:  resource.Query{Page: 1, Limit: cfg.PageSize},
	}

	var opts []debounce.Option
	if cfg.AfterFunc != nil {
		opts = append(opts, debounce.WithAfterFunc(cfg.AfterFunc))
	}
	c.debouncer = debounce.New(cfg.SearchDebounce, c.commitDebounced, opts...)
	return c
}

// Close stops the search debouncer. Pending keystrokes are dropped.
func (c *Controller[T]) Close() {
	c.debouncer.Stop()
}

// Load issues the first fetch.
func (c *Controller[T]) Load(ctx context.Context) error {
	return c.fetch(ctx)
}

// Refresh re-fetches the current query.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.fetch(ctx)
}

// Open replaces the whole query, as when a page is opened from a link, and
// fetches it once.
func (c *Controller[T]) Open(ctx context.Context, q resource.Query) error {
	q = q.Clone().Normalize(c.cfg.PageSize)
	c.mu.Lock()
	c.query = q
	c.searchInput = q.Search
	c.mu.Unlock()
	return c.fetch(ctx)
}

// SetSearchInput updates the search box immediately; the search itself is
// committed once typing pauses.
func (c *Controller[T]) SetSearchInput(s string) {
	c.mu.Lock()
	c.searchInput = s
	c.mu.Unlock()
	c.debouncer.Push(s)
}

func (c *Controller[T]) commitDebounced(s string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FetchTimeout)
	defer cancel()
	if err := c.CommitSearch(ctx, s); err != nil && !errors.Is(err, errors.ErrSuperseded) {
		c.logger.Debug("search fetch failed", "search", s, "error", err.Error())
	}
}

// CommitSearch applies s as the search, back on page 1.
func (c *Controller[T]) CommitSearch(ctx context.Context, s string) error {
	c.mu.Lock()
	c.searchInput = s
	c.query.Search = s
	c.query.Page = 1
	c.mu.Unlock()
	return c.fetch(ctx)
}

// SetFilter sets or, with an empty value, removes a filter, back on page 1.
func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.query = c.query.WithFilter(key, value)
	c.query.Page = 1
	c.mu.Unlock()
	return c.fetch(ctx)
}

func (c *Controller[T]) ClearFilters(ctx context.Context) error {
	c.mu.Lock()
	c.query.Filters = nil
	c.query.Page = 1
	c.mu.Unlock()
	return c.fetch(ctx)
}

func (c *Controller[T]) SetSort(ctx context.Context, by, order string) error {
	c.mu.Lock()
	c.query.SortBy = by
	c.query.SortOrder = order
	c.query.Page = 1
	c.mu.Unlock()
	return c.fetch(ctx)
}

// SetLimit changes the page size, back on page 1.
func (c *Controller[T]) SetLimit(ctx context.Context, limit int) error {
	if limit <= 0 {
		return errors.NewValidation("limit", "limit must be greater than 0")
	}
	c.mu.Lock()
	c.query.Limit = limit
	c.query.Page = 1
	c.mu.Unlock()
	return c.fetch(ctx)
}

// GoToPage jumps to p, clamped to the known page range.
func (c *Controller[T]) GoToPage(ctx context.Context, p int) error {
	total := c.store.Snapshot().Pagination.TotalPages
	c.mu.Lock()
	c.query.Page = pagination.Clamp(p, total)
	c.mu.Unlock()
	return c.fetch(ctx)
}

func (c *Controller[T]) NextPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.Query().Page+1)
}

func (c *Controller[T]) PrevPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.Query().Page-1)
}

// Query returns the query the next fetch will send.
func (c *Controller[T]) Query() resource.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

func (c *Controller[T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// PageWindow is the page strip for the cached page.
func (c *Controller[T]) PageWindow() []pagination.Item {
	p := c.store.Snapshot().Pagination
	return pagination.Window(p.Page, p.TotalPages)
}

// VisibleFilters drops the filters s may not use.
func (c *Controller[T]) VisibleFilters(s session.Session) []resource.Filter {
	out := make([]resource.Filter, 0, len(c.cfg.Filters))
	for _, f := range c.cfg.Filters {
		if f.SuperAdminOnly && s.Role() != session.RoleSuperAdmin {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (c *Controller[T]) Popup() *popup.Popup {
	return c.popup
}

func (c *Controller[T]) View() View[T] {
	state := c.store.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()
	v := View[T]{
		Status:      c.status,
		Items:       state.Items,
		Pagination:  state.Pagination,
		Query:       c.query.Clone(),
		SearchInput: c.searchInput,
		Error:       c.err,
		Window:      pagination.Window(state.Pagination.Page, state.Pagination.TotalPages),
		Popup:       c.popup.State(),
	}
	if c.target != nil {
		v.Delete = DeleteState[T]{Open: true, Target: *c.target, Pending: c.deleting}
	}
	return v
}

func (c *Controller[T]) fetch(ctx context.Context) error {
	c.mu.Lock()
	q := c.query.Clone()
	c.status = Loading
	c.mu.Unlock()

	_, err := c.store.FetchList(ctx, q)
	if errors.Is(err, errors.ErrSuperseded) {
		// The newer fetch owns the status.
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = Errored
		c.err = errors.Message(err, "")
		return err
	}
	c.status = Loaded
	c.err = ""
	return nil
}

// RequestDelete opens the confirmation for the cached record id.
func (c *Controller[T]) RequestDelete(id string) error {
	rec, ok := c.find(id)
	if !ok {
		return errors.NewNotFound(c.store.Name(), nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting {
		return errors.NewPending("delete")
	}
	c.target = &rec
	return nil
}

// CancelDelete closes the confirmation unless the delete is already running.
func (c *Controller[T]) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.deleting {
		c.target = nil
	}
}

// ConfirmDelete deletes the record under confirmation. It is refused while
// that delete is still running. Either way the modal closes; success shows a
// popup and re-fetches so the total is right again, failure shows the error
// and leaves the list as it was.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.target == nil {
		c.mu.Unlock()
		return errors.NewBadRequest("nothing to delete", nil)
	}
	if c.deleting {
		c.mu.Unlock()
		return errors.NewPending("delete")
	}
	c.deleting = true
	id := (*c.target).RecordID()
	c.mu.Unlock()

	_, err := c.store.Delete(ctx, id)

	c.mu.Lock()
	c.deleting = false
	c.target = nil
	c.mu.Unlock()

	if err != nil {
		c.popup.Error(errors.Message(err, ""))
		return err
	}

	c.popup.Success("Deleted successfully")
	if err := c.Refresh(ctx); err != nil && !errors.Is(err, errors.ErrSuperseded) {
		c.logger.Warn("refresh after delete failed", "error", err.Error())
	}
	return nil
}

func (c *Controller[T]) find(id string) (T, bool) {
	for _, rec := range c.store.Snapshot().Items {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}
