package listpage

import (
	"context"
	"strings"
	"sync"

	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

// fakeStore is an in-memory lead backend and store rolled into one.
type fakeStore struct {
	mu        sync.Mutex
	data      []model.Lead
	state     resource.State[model.Lead]
	queries   []resource.Query
	fetchErr  error
	deleteErr error
	// deleteGate, when set, blocks Delete until closed.
	deleteGate chan struct{}
	assigned   []string
	assignErr  error
}

func newFakeStore(leads ...model.Lead) *fakeStore {
	return &fakeStore{data: leads}
}

func (f *fakeStore) Name() string { return "leads" }

func (f *fakeStore) FetchList(ctx context.Context, q resource.Query) (resource.Page[model.Lead], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q.Clone())
	if f.fetchErr != nil {
		f.state.Error = f.fetchErr.Error()
		return resource.Page[model.Lead]{}, f.fetchErr
	}

	var matched []model.Lead
	for _, l := range f.data {
		if q.Search != "" && !strings.Contains(l.Name, q.Search) {
			continue
		}
		if st := q.Filters["status"]; st != "" && l.Status != st {
			continue
		}
		matched = append(matched, l)
	}

	start := (q.Page - 1) * q.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	items := append([]model.Lead{}, matched[start:end]...)
	p := resource.Pagination{Page: q.Page, Limit: q.Limit, Total: len(matched)}
	p.TotalPages = (p.Total + q.Limit - 1) / q.Limit

	f.state = resource.State[model.Lead]{Items: items, Pagination: p, Query: q}
	return resource.Page[model.Lead]{Items: items, Pagination: p}, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	gate := f.deleteGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	for i, l := range f.data {
		if l.ID == id {
			f.data = append(f.data[:i:i], f.data[i+1:]...)
			break
		}
	}
	for i, l := range f.state.Items {
		if l.ID == id {
			f.state.Items = append(f.state.Items[:i:i], f.state.Items[i+1:]...)
			break
		}
	}
	return id, nil
}

func (f *fakeStore) Snapshot() resource.State[model.Lead] {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Items = append([]model.Lead{}, f.state.Items...)
	return s
}

func (f *fakeStore) Assign(ctx context.Context, ids []string, staffID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for i := range f.data {
		if want[f.data[i].ID] {
			f.data[i].AssignedTo = staffID
		}
	}
	f.assigned = append(f.assigned, ids...)
	return nil
}

func (f *fakeStore) lastQuery() resource.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func (f *fakeStore) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

var errBackend = errors.NewRequest(500, "backend exploded", nil)
