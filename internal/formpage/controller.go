// Package formpage is the view-model behind add and edit pages.
package formpage

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/admin-console/internal/debounce"
	"github.com/jwalitptl/admin-console/internal/popup"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/validator"
)

type Mode int

const (
	Add Mode = iota
	Edit
)

func (m Mode) String() string {
	if m == Edit {
		return "edit"
	}
	return "add"
}

// Mutator is the store a form page drives.
type Mutator[T resource.Record] interface {
	Name() string
	Find(id string) (T, bool)
	FetchByID(ctx context.Context, id string) (T, error)
	FetchList(ctx context.Context, q resource.Query) (resource.Page[T], error)
	Create(ctx context.Context, payload interface{}) (T, error)
	Update(ctx context.Context, id string, patch interface{}) (T, error)
}

// Route is a navigation target. Page is the list page to open.
type Route struct {
	Path string
	Page int
}

type Navigator interface {
	Navigate(r Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }

type Config[T resource.Record] struct {
	Mode Mode
	// ID is the record being edited.
	ID string
	// ListPath is where the page returns after saving.
	ListPath string
	// CreateRequired lists json fields required only when adding, such as a
	// staff password.
	CreateRequired []string
	// Empty returns a blank form; the zero T when nil.
	Empty func() T
	// NavigateAfterCreate returns to the list NavigateDelay after adding.
	NavigateAfterCreate bool
	NavigateDelay       time.Duration
	// LookupLimit is the page size used when the record has to be found in
	// the list.
	LookupLimit int
	Validator   validator.Validator
	Navigator   Navigator
	Popup       *popup.Popup
	AfterFunc   debounce.AfterFunc
	Logger      *logger.Logger
}

// State is everything a form page renders.
type State[T resource.Record] struct {
	Mode       Mode
	Form       T
	Loaded     bool
	NotFound   bool
	Submitting bool
	Error      string
	Popup      popup.State
}

type Controller[T resource.Record] struct {
	store  Mutator[T]
	cfg    Config[T]
	popup  *popup.Popup
	logger *logger.Logger

	mu         sync.Mutex
	form       T
	loaded     bool
	notFound   bool
	submitting bool
	err        string
}

func New[T resource.Record](store Mutator[T], cfg Config[T]) *Controller[T] {
	if cfg.Empty == nil {
		cfg.Empty = func() T { var zero T; return zero }
	}
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Popup == nil {
		cfg.Popup = &popup.Popup{}
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) debounce.Timer { return time.AfterFunc(d, f) }
	}
	if cfg.LookupLimit <= 0 {
		cfg.LookupLimit = 100
	}

	c := &Controller[T]{
		store:  store,
		cfg:    cfg,
		popup:  cfg.Popup,
		logger: logger.OrNop(cfg.Logger).WithFields(map[string]interface{}{"form": store.Name(), "mode": cfg.Mode.String()}),
		form:   cfg.Empty(),
	}
	if cfg.Mode == Add {
		c.loaded = true
	}
	return c
}

// Load fills an edit form from the cached list, then the backend by id, then
// a list search when the backend has no lookup by id. The form is populated
// once; later calls leave in-progress edits alone.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	rec, err := c.locate(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.notFound = errors.Is(err, errors.ErrNotFound)
		c.err = errors.Message(err, "")
		return err
	}
	if !c.loaded {
		c.form = rec
		c.loaded = true
		c.notFound = false
		c.err = ""
	}
	return nil
}

func (c *Controller[T]) locate(ctx context.Context) (T, error) {
	var zero T
	if c.cfg.ID == "" {
		return zero, errors.NewNotFound(c.store.Name(), nil)
	}
	if rec, ok := c.store.Find(c.cfg.ID); ok {
		return rec, nil
	}

	rec, err := c.store.FetchByID(ctx, c.cfg.ID)
	if !errors.Is(err, errors.ErrUnsupported) {
		return rec, err
	}

	c.logger.Debug("no lookup by id, searching the list", "id", c.cfg.ID)
	page, err := c.store.FetchList(ctx, resource.Query{Page: 1, Limit: c.cfg.LookupLimit})
	if err != nil {
		return zero, err
	}
	for _, item := range page.Items {
		if item.RecordID() == c.cfg.ID {
			return item, nil
		}
	}
	return zero, errors.NewNotFound(c.store.Name(), nil)
}

// Update edits the local form. A blocked or unloaded edit form rejects it.
func (c *Controller[T]) Update(fn func(*T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	fn(&c.form)
	return nil
}

// Submit validates the form and, only if it is valid, creates or updates the
// record.
func (c *Controller[T]) Submit(ctx context.Context) (T, error) {
	var zero T

	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return zero, err
	}
	if c.submitting {
		c.mu.Unlock()
		return zero, errors.NewPending("submit")
	}
	form := c.form
	c.submitting = true
	c.mu.Unlock()

	rec, err := c.submit(ctx, form)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.err = errors.Message(err, "")
	} else {
		c.err = ""
	}
	c.mu.Unlock()

	if err != nil {
		c.popup.Error(errors.Message(err, ""))
		return zero, err
	}
	return rec, nil
}

func (c *Controller[T]) submit(ctx context.Context, form T) (T, error) {
	var zero T
	if err := c.cfg.Validator.Struct(form); err != nil {
		return zero, err
	}

	if c.cfg.Mode == Add {
		if err := c.cfg.Validator.Required(form, c.cfg.CreateRequired...); err != nil {
			return zero, err
		}
		rec, err := c.store.Create(ctx, form)
		if err != nil {
			return zero, err
		}
		c.mu.Lock()
		c.form = c.cfg.Empty()
		c.mu.Unlock()
		c.popup.Success("Created successfully")
		if c.cfg.NavigateAfterCreate {
			c.cfg.AfterFunc(c.cfg.NavigateDelay, func() { c.navigate(Route{Path: c.cfg.ListPath, Page: 1}) })
		}
		return rec, nil
	}

	rec, err := c.store.Update(ctx, c.cfg.ID, form)
	if err != nil {
		return zero, err
	}
	c.mu.Lock()
	c.form = rec
	c.mu.Unlock()
	c.popup.Success("Updated successfully")
	// Edits always land on the first list page.
	c.navigate(Route{Path: c.cfg.ListPath, Page: 1})
	return rec, nil
}

func (c *Controller[T]) navigate(r Route) {
	if c.cfg.Navigator != nil {
		c.cfg.Navigator.Navigate(r)
	}
}

func (c *Controller[T]) editableLocked() error {
	if c.notFound {
		return errors.NewNotFound(c.store.Name(), nil)
	}
	if !c.loaded {
		return errors.NewBadRequest("form is not loaded yet", nil)
	}
	return nil
}

func (c *Controller[T]) Form() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller[T]) Popup() *popup.Popup {
	return c.popup
}

func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T]{
		Mode:       c.cfg.Mode,
		Form:       c.form,
		Loaded:     c.loaded,
		NotFound:   c.notFound,
		Submitting: c.submitting,
		Error:      c.err,
		Popup:      c.popup.State(),
	}
}
