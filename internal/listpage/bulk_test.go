package listpage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/internal/debounce"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

func mixedLeads() []model.Lead {
	return []model.Lead{
		{ID: "l1", Name: "a", Status: model.LeadStatusNew},
		{ID: "l2", Name: "b", Status: model.LeadStatusContacted},
		{ID: "l3", Name: "c", Status: model.LeadStatusNew},
		{ID: "l4", Name: "d", Status: model.LeadStatusLost, AssignedTo: "s1"},
		{ID: "l5", Name: "e", Status: model.LeadStatusNew},
	}
}

func newBulk(t *testing.T) (*BulkAssign[model.Lead], *Controller[model.Lead], *fakeStore) {
	store := newFakeStore(mixedLeads()...)
	c := newController(store, debounce.NewManualClock())
	require.NoError(t, c.Load(context.Background()))
	return NewBulkAssign[model.Lead](c, store, model.Lead.Eligible), c, store
}

func TestBulkAssignScenario(t *testing.T) {
	b, c, store := newBulk(t)
	ctx := context.Background()

	b.Enter()
	assert.Len(t, b.EligibleIDs(), 3)
	assert.Empty(t, b.Selected())

	b.ToggleAll()
	assert.Equal(t, []string{"l1", "l3", "l5"}, b.Selected())

	fetches := store.fetches()
	require.NoError(t, b.Assign(ctx, "X"))

	assert.False(t, b.Active())
	assert.Empty(t, b.Selected())
	assert.Equal(t, fetches+1, store.fetches(), "assignment re-fetches the list")

	byID := map[string]model.Lead{}
	for _, l := range c.View().Items {
		byID[l.ID] = l
	}
	for _, id := range []string{"l1", "l3", "l5"} {
		assert.Equal(t, "X", byID[id].AssignedTo, id)
	}
	assert.Empty(t, byID["l2"].AssignedTo)
	assert.Equal(t, "s1", byID["l4"].AssignedTo)
}

func TestBulkToggle(t *testing.T) {
	b, _, _ := newBulk(t)

	assert.True(t, errors.Is(b.Toggle("l1"), errors.ErrBadRequest), "mode is off")

	b.Enter()
	assert.True(t, errors.Is(b.Toggle("l2"), errors.ErrValidation), "contacted lead is not eligible")
	assert.True(t, errors.Is(b.Toggle("zz"), errors.ErrNotFound))

	require.NoError(t, b.Toggle("l3"))
	assert.Equal(t, []string{"l3"}, b.Selected())

	b.ToggleAll()
	assert.Len(t, b.Selected(), 3, "partial selection becomes full")
	b.ToggleAll()
	assert.Empty(t, b.Selected(), "full selection becomes empty")

	require.NoError(t, b.Toggle("l1"))
	b.Exit()
	b.Enter()
	assert.Empty(t, b.Selected(), "entering clears any prior selection")
}

func TestBulkAssignFailureKeepsSelection(t *testing.T) {
	b, c, store := newBulk(t)
	ctx := context.Background()

	b.Enter()
	assert.True(t, errors.Is(b.Assign(ctx, "X"), errors.ErrValidation), "empty selection")

	b.ToggleAll()
	store.assignErr = errors.NewRequest(500, "assignment failed", nil)
	require.Error(t, b.Assign(ctx, "X"))

	assert.True(t, b.Active())
	assert.Len(t, b.Selected(), 3)
	assert.Equal(t, "assignment failed", c.View().Popup.Message)
}
