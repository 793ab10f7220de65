package listpage

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

// Assigner performs the bulk assignment on the backend.
type Assigner interface {
	Assign(ctx context.Context, ids []string, staffID string) error
}

// BulkAssign is the assign mode of a list page. Only records accepted by the
// eligibility predicate can be selected.
type BulkAssign[T resource.Record] struct {
	list     *Controller[T]
	assigner Assigner
	eligible func(T) bool

	mu        sync.Mutex
	active    bool
	selected  map[string]struct{}
	assigning bool
}

func NewBulkAssign[T resource.Record](list *Controller[T], assigner Assigner, eligible func(T) bool) *BulkAssign[T] {
	return &BulkAssign[T]{
		list:     list,
		assigner: assigner,
		eligible: eligible,
		selected: make(map[string]struct{}),
	}
}

// Enter turns assign mode on with an empty selection.
func (b *BulkAssign[T]) Enter() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = true
	b.selected = make(map[string]struct{})
}

// Exit turns assign mode off and drops the selection.
func (b *BulkAssign[T]) Exit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = false
	b.selected = make(map[string]struct{})
}

func (b *BulkAssign[T]) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// EligibleIDs lists the cached records that can be selected, in list order.
func (b *BulkAssign[T]) EligibleIDs() []string {
	var ids []string
	for _, rec := range b.list.store.Snapshot().Items {
		if b.eligible(rec) {
			ids = append(ids, rec.RecordID())
		}
	}
	return ids
}

// Toggle flips the selection of one eligible record.
func (b *BulkAssign[T]) Toggle(id string) error {
	rec, ok := b.list.find(id)
	if !ok {
		return errors.NewNotFound(b.list.store.Name(), nil)
	}
	if !b.eligible(rec) {
		return errors.NewValidation("id", fmt.Sprintf("%s cannot be assigned", id))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return errors.NewBadRequest("assign mode is off", nil)
	}
	if _, on := b.selected[id]; on {
		delete(b.selected, id)
	} else {
		b.selected[id] = struct{}{}
	}
	return nil
}

// ToggleAll selects every eligible record, or clears the selection when all
// of them are already selected.
func (b *BulkAssign[T]) ToggleAll() {
	eligible := b.EligibleIDs()

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return
	}
	all := len(eligible) > 0
	for _, id := range eligible {
		if _, on := b.selected[id]; !on {
			all = false
			break
		}
	}
	b.selected = make(map[string]struct{})
	if all {
		return
	}
	for _, id := range eligible {
		b.selected[id] = struct{}{}
	}
}

// Selected returns the selection in list order.
func (b *BulkAssign[T]) Selected() []string {
	items := b.list.store.Snapshot().Items

	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.selected))
	for _, rec := range items {
		if _, on := b.selected[rec.RecordID()]; on {
			ids = append(ids, rec.RecordID())
		}
	}
	return ids
}

// Assign hands the selection to staffID. On success assign mode ends, the
// selection is cleared and the list re-fetched; on failure both are kept.
func (b *BulkAssign[T]) Assign(ctx context.Context, staffID string) error {
	ids := b.Selected()

	b.mu.Lock()
	switch {
	case !b.active:
		b.mu.Unlock()
		return errors.NewBadRequest("assign mode is off", nil)
	case b.assigning:
		b.mu.Unlock()
		return errors.NewPending("assignment")
	case len(ids) == 0:
		b.mu.Unlock()
		return errors.NewValidation("leadIds", "select at least one record")
	}
	b.assigning = true
	b.mu.Unlock()

	err := b.assigner.Assign(ctx, ids, staffID)

	b.mu.Lock()
	b.assigning = false
	if err == nil {
		b.active = false
		b.selected = make(map[string]struct{})
	}
	b.mu.Unlock()

	if err != nil {
		b.list.popup.Error(errors.Message(err, ""))
		return err
	}

	b.list.popup.Success(fmt.Sprintf("%d assigned successfully", len(ids)))
	if err := b.list.Refresh(ctx); err != nil && !errors.Is(err, errors.ErrSuperseded) {
		b.list.logger.Warn("refresh after assignment failed", "error", err.Error())
	}
	return nil
}
