package listpage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/internal/debounce"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/pagination"
	"github.com/jwalitptl/admin-console/internal/popup"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/internal/session"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

func leads(n int) []model.Lead {
	out := make([]model.Lead, n)
	for i := range out {
		out[i] = model.Lead{ID: fmt.Sprintf("l%d", i+1), Name: fmt.Sprintf("lead %d", i+1), Status: model.LeadStatusNew}
	}
	return out
}

func newController(store *fakeStore, clock *debounce.ManualClock) *Controller[model.Lead] {
	return New[model.Lead](store, Config{
		PageSize:  10,
		AfterFunc: clock.AfterFunc,
		Filters: []resource.Filter{
			{Key: "status", Options: model.LeadStatuses},
			{Key: "assignedTo", SuperAdminOnly: true},
		},
	})
}

func TestLoadTransitions(t *testing.T) {
	store := newFakeStore(leads(23)...)
	c := newController(store, debounce.NewManualClock())
	assert.Equal(t, Idle, c.Status())

	require.NoError(t, c.Load(context.Background()))
	v := c.View()
	assert.Equal(t, Loaded, v.Status)
	assert.Len(t, v.Items, 10)
	assert.Equal(t, 3, v.Pagination.TotalPages)
	assert.Equal(t, []string{"1", "2", "3"}, pagination.Strings(v.Window))

	store.fetchErr = errBackend
	require.Error(t, c.NextPage(context.Background()))
	v = c.View()
	assert.Equal(t, Errored, v.Status)
	assert.Equal(t, "backend exploded", v.Error)
	assert.Len(t, v.Items, 10, "previous page stays visible")

	store.fetchErr = nil
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, Loaded, c.Status())
	assert.Empty(t, c.View().Error)
}

func TestSearchIsDebounced(t *testing.T) {
	store := newFakeStore(leads(23)...)
	clock := debounce.NewManualClock()
	c := newController(store, clock)
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.GoToPage(context.Background(), 3))
	before := store.fetches()

	for _, s := range []string{"l", "le", "lea", "lead 2"} {
		c.SetSearchInput(s)
		assert.Equal(t, s, c.View().SearchInput, "input updates immediately")
		clock.Advance(200 * time.Millisecond)
	}
	assert.Equal(t, before, store.fetches(), "no fetch while typing")

	clock.Advance(debounce.DefaultDelay)
	assert.Equal(t, before+1, store.fetches(), "one fetch per pause")

	q := store.lastQuery()
	assert.Equal(t, "lead 2", q.Search)
	assert.Equal(t, 1, q.Page, "search resets the page")
	assert.Equal(t, Loaded, c.Status())
}

func TestFilterSortAndLimitResetPage(t *testing.T) {
	store := newFakeStore(leads(40)...)
	c := newController(store, debounce.NewManualClock())
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.GoToPage(ctx, 3))
	assert.Equal(t, 3, store.lastQuery().Page)

	require.NoError(t, c.SetFilter(ctx, "status", model.LeadStatusNew))
	assert.Equal(t, 1, store.lastQuery().Page)
	assert.Equal(t, model.LeadStatusNew, store.lastQuery().Filters["status"])

	require.NoError(t, c.GoToPage(ctx, 2))
	require.NoError(t, c.SetSort(ctx, "name", resource.SortAsc))
	assert.Equal(t, 1, store.lastQuery().Page)

	require.NoError(t, c.GoToPage(ctx, 2))
	require.NoError(t, c.SetLimit(ctx, 25))
	assert.Equal(t, resource.Query{Page: 1, Limit: 25, Filters: map[string]string{"status": "new"}, SortBy: "name", SortOrder: "asc"}, store.lastQuery())

	require.NoError(t, c.ClearFilters(ctx))
	assert.Empty(t, store.lastQuery().Filters)

	assert.True(t, errors.Is(c.SetLimit(ctx, 0), errors.ErrValidation))
}

func TestPagingClamps(t *testing.T) {
	store := newFakeStore(leads(23)...)
	c := newController(store, debounce.NewManualClock())
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.PrevPage(ctx))
	assert.Equal(t, 1, store.lastQuery().Page)

	require.NoError(t, c.GoToPage(ctx, 99))
	assert.Equal(t, 3, store.lastQuery().Page)
	assert.Len(t, c.View().Items, 3)

	require.NoError(t, c.NextPage(ctx))
	assert.Equal(t, 3, store.lastQuery().Page)
}

func TestVisibleFilters(t *testing.T) {
	c := newController(newFakeStore(), debounce.NewManualClock())

	assert.Len(t, c.VisibleFilters(session.Session{UserID: "u1"}), 1)
	assert.Len(t, c.VisibleFilters(session.Anonymous()), 1)
	assert.Len(t, c.VisibleFilters(session.Session{UserID: "u1", SuperAdmin: true}), 2)
}

func TestDeleteFlow(t *testing.T) {
	store := newFakeStore(leads(12)...)
	c := newController(store, debounce.NewManualClock())
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	assert.True(t, errors.Is(c.RequestDelete("nope"), errors.ErrNotFound))

	require.NoError(t, c.RequestDelete("l2"))
	v := c.View()
	assert.True(t, v.Delete.Open)
	assert.Equal(t, "l2", v.Delete.Target.ID)

	c.CancelDelete()
	assert.False(t, c.View().Delete.Open)

	require.NoError(t, c.RequestDelete("l2"))
	fetches := store.fetches()
	require.NoError(t, c.ConfirmDelete(ctx))

	v = c.View()
	assert.False(t, v.Delete.Open)
	assert.Equal(t, popup.State{Visible: true, Message: "Deleted successfully", Kind: popup.KindSuccess}, v.Popup)
	assert.Equal(t, fetches+1, store.fetches(), "delete re-fetches the current query")
	assert.Equal(t, 11, v.Pagination.Total)
	for _, l := range v.Items {
		assert.NotEqual(t, "l2", l.ID)
	}
}

func TestDeleteFailureClosesModalAndKeepsList(t *testing.T) {
	store := newFakeStore(leads(5)...)
	c := newController(store, debounce.NewManualClock())
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	store.deleteErr = errors.NewRequest(409, "lead has open tasks", nil)
	require.NoError(t, c.RequestDelete("l1"))
	fetches := store.fetches()

	require.Error(t, c.ConfirmDelete(ctx))
	v := c.View()
	assert.False(t, v.Delete.Open)
	assert.Equal(t, popup.KindError, v.Popup.Kind)
	assert.Equal(t, "lead has open tasks", v.Popup.Message)
	assert.Equal(t, fetches, store.fetches())
	assert.Len(t, v.Items, 5)
}

func TestConfirmDeleteDisabledWhilePending(t *testing.T) {
	store := newFakeStore(leads(3)...)
	c := newController(store, debounce.NewManualClock())
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	gate := make(chan struct{})
	store.mu.Lock()
	store.deleteGate = gate
	store.mu.Unlock()

	require.NoError(t, c.RequestDelete("l1"))
	done := make(chan error, 1)
	go func() { done <- c.ConfirmDelete(ctx) }()

	require.Eventually(t, func() bool { return c.View().Delete.Pending }, time.Second, 5*time.Millisecond)
	assert.True(t, errors.Is(c.ConfirmDelete(ctx), errors.ErrPending))
	c.CancelDelete()
	assert.True(t, c.View().Delete.Open, "cannot cancel a running delete")

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, c.View().Delete.Open)

	assert.True(t, errors.Is(c.ConfirmDelete(ctx), errors.ErrBadRequest))
}

func TestOpenFetchesOnce(t *testing.T) {
	store := newFakeStore(leads(23)...)
	c := newController(store, debounce.NewManualClock())

	err := c.Open(context.Background(), resource.Query{
		Page:    2,
		Search:  "lead",
		Filters: map[string]string{"status": model.LeadStatusNew},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.fetches())

	q := store.lastQuery()
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 10, q.Limit, "page size fills a missing limit")
	assert.Equal(t, "lead", q.Search)
	assert.Equal(t, model.LeadStatusNew, q.Filters["status"])

	v := c.View()
	assert.Equal(t, "lead", v.SearchInput)
	assert.Equal(t, Loaded, v.Status)
}
