package resource

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

func newTestStore(fn doFunc) (*Store[item], *fakeDoer) {
	doer := &fakeDoer{fn: fn}
	return NewStore[item](doer, Config[item]{Name: "customers", Path: "/api/customers", SupportsGetByID: true}, nil), doer
}

func items(n int, prefix string) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{ID: fmt.Sprintf("%s%d", prefix, i+1), Name: fmt.Sprintf("%s %d", prefix, i+1)}
	}
	return out
}

func TestFetchListValidatesQuery(t *testing.T) {
	store, doer := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := store.FetchList(context.Background(), Query{Page: 0, Limit: 10})
	assert.True(t, errors.Is(err, errors.ErrValidation))
	_, err = store.FetchList(context.Background(), Query{Page: 1, Limit: 0})
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Empty(t, doer.calls())
}

func TestFetchListReplacesPage(t *testing.T) {
	store, doer := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		return ok(flatPage(items(10, "c"), 23))
	})

	page, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10, Search: "ada"})
	require.NoError(t, err)

	assert.Len(t, page.Items, 10)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	state := store.Snapshot()
	assert.Len(t, state.Items, 10)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Equal(t, "ada", state.Query.Search)

	req := doer.calls()[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/customers", req.Path)
	assert.Equal(t, "ada", req.Query.Get("search"))
}

func TestFetchListFailureKeepsPreviousPage(t *testing.T) {
	fail := false
	store, _ := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		if fail {
			return failWith(http.StatusInternalServerError, "database unavailable")
		}
		return ok(flatPage(items(3, "c"), 3))
	})

	_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10})
	require.NoError(t, err)

	fail = true
	_, err = store.FetchList(context.Background(), Query{Page: 2, Limit: 10})
	require.Error(t, err)

	state := store.Snapshot()
	assert.Len(t, state.Items, 3)
	assert.Equal(t, 1, state.Pagination.Page)
	assert.Equal(t, "database unavailable", state.Error)
	assert.False(t, state.Loading)

	store.ClearError()
	assert.Empty(t, store.Snapshot().Error)
}

func TestFetchListDiscardsOutOfOrderResponse(t *testing.T) {
	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	cancelledA := make(chan bool, 1)

	m := metrics.New("test")
	doer := &fakeDoer{}
	doer.fn = func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		if req.Query.Get("search") == "a" {
			close(startedA)
			<-releaseA
			cancelledA <- ctx.Err() != nil
			// Answer anyway, as a slow backend would.
			return ok(flatPage(items(2, "a"), 2))
		}
		return ok(flatPage(items(1, "b"), 1))
	}
	store := NewStore[item](doer, Config[item]{Name: "leads", Path: "/api/leads", Metrics: m}, nil)

	errA := make(chan error, 1)
	go func() {
		_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10, Search: "a"})
		errA <- err
	}()
	<-startedA

	pageB, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10, Search: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b1", pageB.Items[0].ID)

	close(releaseA)
	err = <-errA
	assert.True(t, errors.Is(err, errors.ErrSuperseded))
	assert.True(t, <-cancelledA, "superseded fetch should be cancelled")

	state := store.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "b1", state.Items[0].ID)
	assert.Equal(t, "b", state.Query.Search)
	assert.False(t, state.Loading)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleResponses.WithLabelValues("leads")))
}

func TestLoadingClearedOnlyByLatestFetch(t *testing.T) {
	releaseB := make(chan struct{})
	startedB := make(chan struct{})
	store, _ := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		if req.Query.Get("search") == "b" {
			close(startedB)
			<-releaseB
			return ok(flatPage(items(1, "b"), 1))
		}
		// A finishes while B is still running.
		<-startedB
		return ok(flatPage(items(1, "a"), 1))
	})

	errA := make(chan error, 1)
	go func() {
		_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10, Search: "a"})
		errA <- err
	}()
	// Give A time to take its sequence number before B.
	time.Sleep(20 * time.Millisecond)

	doneB := make(chan error, 1)
	go func() {
		_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10, Search: "b"})
		doneB <- err
	}()

	assert.True(t, errors.Is(<-errA, errors.ErrSuperseded))
	assert.True(t, store.Snapshot().Loading)

	close(releaseB)
	require.NoError(t, <-doneB)
	assert.False(t, store.Snapshot().Loading)
}

func TestCreatePrependsAndIsNotIdempotent(t *testing.T) {
	n := 0
	store, _ := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		if req.Method == http.MethodGet {
			return ok(flatPage(items(2, "c"), 2))
		}
		n++
		return jsonResponse(http.StatusCreated, map[string]interface{}{
			"data": item{ID: fmt.Sprintf("new%d", n), Name: "Ada"},
		}), nil
	})

	_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10})
	require.NoError(t, err)

	first, err := store.Create(context.Background(), item{Name: "Ada"})
	require.NoError(t, err)
	second, err := store.Create(context.Background(), item{Name: "Ada"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	state := store.Snapshot()
	require.Len(t, state.Items, 4)
	assert.Equal(t, "new2", state.Items[0].ID)
	assert.Equal(t, "new1", state.Items[1].ID)
}

func TestUpdateRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		reply func(req httpclient.Request) (*httpclient.Response, error)
	}{
		{
			name: "backend returns record",
			reply: func(req httpclient.Request) (*httpclient.Response, error) {
				return ok(map[string]interface{}{"data": item{ID: "c2", Name: "Renamed", Email: "c2@example.com", Tags: []string{"x"}}})
			},
		},
		{
			name: "backend returns no record",
			reply: func(req httpclient.Request) (*httpclient.Response, error) {
				return ok(map[string]interface{}{"success": true})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
				if req.Method == http.MethodGet {
					list := items(3, "c")
					list[1].Email = "c2@example.com"
					list[1].Tags = []string{"x"}
					return ok(flatPage(list, 3))
				}
				assert.Equal(t, "/api/customers/c2", req.Path)
				return tt.reply(req)
			})
			_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10})
			require.NoError(t, err)

			updated, err := store.Update(context.Background(), "c2", map[string]string{"name": "Renamed"})
			require.NoError(t, err)
			assert.Equal(t, "Renamed", updated.Name)

			state := store.Snapshot()
			require.Len(t, state.Items, 3)
			got := state.Items[1]
			assert.Equal(t, "c2", got.ID, "position is kept")
			assert.Equal(t, "Renamed", got.Name)
			assert.Equal(t, "c2@example.com", got.Email)
			assert.Equal(t, []string{"x"}, got.Tags)
		})
	}
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	store, _ := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		switch {
		case req.Method == http.MethodGet:
			return ok(flatPage(items(3, "c"), 3))
		case req.Path == "/api/customers/missing":
			return failWith(http.StatusNotFound, "customer not found")
		default:
			return ok(map[string]string{"id": "c2"})
		}
	})
	_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10})
	require.NoError(t, err)

	id, err := store.Delete(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, "c2", id)

	state := store.Snapshot()
	assert.Equal(t, []string{"c1", "c3"}, ids(state.Items))
	assert.Equal(t, 3, state.Pagination.Total, "total is corrected by the next fetch")

	_, err = store.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRequest))

	state = store.Snapshot()
	assert.Equal(t, []string{"c1", "c3"}, ids(state.Items))
	assert.Equal(t, "customer not found", state.Error)
}

func TestFetchByIDUpserts(t *testing.T) {
	store, _ := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		switch req.Path {
		case "/api/customers":
			return ok(flatPage(items(2, "c"), 2))
		case "/api/customers/c1":
			return ok(map[string]interface{}{"data": item{ID: "c1", Name: "Fresh"}})
		case "/api/customers/c9":
			return ok(item{ID: "c9", Name: "Deep link"})
		default:
			return failWith(http.StatusNotFound, "not here")
		}
	})
	_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10})
	require.NoError(t, err)

	_, err = store.FetchByID(context.Background(), "c1")
	require.NoError(t, err)
	_, err = store.FetchByID(context.Background(), "c9")
	require.NoError(t, err)
	_, err = store.FetchByID(context.Background(), "c9")
	require.NoError(t, err)

	state := store.Snapshot()
	assert.Equal(t, []string{"c1", "c2", "c9"}, ids(state.Items))
	assert.Equal(t, "Fresh", state.Items[0].Name)

	_, err = store.FetchByID(context.Background(), "zz")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	found, exists := store.Find("c9")
	assert.True(t, exists)
	assert.Equal(t, "Deep link", found.Name)
}

func TestFetchByIDUnsupported(t *testing.T) {
	doer := &fakeDoer{fn: func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}}
	store := NewStore[item](doer, Config[item]{Name: "roles", Path: "api/roles/"}, nil)

	_, err := store.FetchByID(context.Background(), "r1")
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
	assert.Equal(t, "roles", store.Name())
}

func TestReadOnlyStoreRejectsMutations(t *testing.T) {
	doer := &fakeDoer{fn: func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}}
	store := NewStore[item](doer, Config[item]{Name: "call logs", Path: "/api/ivr/call-logs", ReadOnly: true}, nil)

	_, err := store.Create(context.Background(), item{})
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
	_, err = store.Update(context.Background(), "x", item{})
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
	_, err = store.Delete(context.Background(), "x")
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}

func TestApply(t *testing.T) {
	store, _ := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		return ok(flatPage(items(3, "c"), 3))
	})
	_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10})
	require.NoError(t, err)

	store.Apply([]string{"c1", "c3", "nope"}, func(i item) item {
		i.Email = "set"
		return i
	})

	state := store.Snapshot()
	assert.Equal(t, "set", state.Items[0].Email)
	assert.Empty(t, state.Items[1].Email)
	assert.Equal(t, "set", state.Items[2].Email)
}

func ids(list []item) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i] = it.ID
	}
	return out
}

func TestLookupLeavesStateAlone(t *testing.T) {
	store, _ := newTestStore(func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
		if req.Query.Get("limit") == "100" {
			return ok(flatPage(items(5, "all"), 5))
		}
		return ok(flatPage(items(2, "c"), 2))
	})
	_, err := store.FetchList(context.Background(), Query{Page: 1, Limit: 10})
	require.NoError(t, err)

	page, err := store.Lookup(context.Background(), Query{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, []string{"c1", "c2"}, ids(store.Snapshot().Items))
}
