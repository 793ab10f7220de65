package staff

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
)

func TestOptionsAreCachedUntilMutation(t *testing.T) {
	var lists int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			atomic.AddInt32(&lists, 1)
			assert.Equal(t, "name", r.URL.Query().Get("sortBy"))
			_, _ = w.Write([]byte(`{"items":[{"id":"s1","name":"Ada"},{"id":"s2","name":"Bob"}],"total":2}`))
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"id":"s3","name":"Cy","email":"cy@example.com"}}`))
		}
	}))
	defer server.Close()

	svc := NewService(httpclient.New(httpclient.Config{BaseURL: server.URL}, nil), nil, nil)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Option{{ID: "s1", Name: "Ada"}, {ID: "s2", Name: "Bob"}}, opts)

	_, err = svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&lists))
	assert.Empty(t, svc.Snapshot().Items, "options do not fill the list page")

	_, err = svc.Create(context.Background(), model.Staff{Name: "Cy", Email: "cy@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&lists))
}

func TestStaffListDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"s1","name":"Ada"}],"total":1,"page":1,"totalPages":1}`))
	}))
	defer server.Close()

	svc := NewService(httpclient.New(httpclient.Config{BaseURL: server.URL}, nil), nil, nil)
	page, err := svc.FetchList(context.Background(), resource.Query{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "active", page.Items[0].Status)
}
