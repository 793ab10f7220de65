package lead

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

func TestListWithoutTotalPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"result":[{"id":"l1","name":"A","email":"a@x.io"}],"totalDocuments":21,"currentPage":1}}`))
	}))
	defer server.Close()

	svc := NewService(httpclient.New(httpclient.Config{BaseURL: server.URL}, nil), nil, nil)
	page, err := svc.FetchList(context.Background(), resource.Query{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, "new", page.Items[0].Status)
}

func TestAssign(t *testing.T) {
	var got AssignRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case Path:
			_, _ = w.Write([]byte(`{"data":{"result":[
				{"id":"l1","status":"new"},{"id":"l2","status":"contacted"},{"id":"l3","status":"new"}
			],"totalDocuments":3}}`))
		case AssignPath:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	}))
	defer server.Close()

	svc := NewService(httpclient.New(httpclient.Config{BaseURL: server.URL}, nil), nil, nil)
	_, err := svc.FetchList(context.Background(), resource.Query{Page: 1, Limit: 10})
	require.NoError(t, err)

	require.NoError(t, svc.Assign(context.Background(), []string{"l1", "l3"}, "s9"))
	assert.Equal(t, AssignRequest{LeadIDs: []string{"l1", "l3"}, StaffID: "s9"}, got)

	state := svc.Snapshot()
	assert.Equal(t, "s9", state.Items[0].AssignedTo)
	assert.Empty(t, state.Items[1].AssignedTo)
	assert.Equal(t, "s9", state.Items[2].AssignedTo)
}

func TestAssignValidation(t *testing.T) {
	svc := NewService(httpclient.New(httpclient.Config{BaseURL: "http://127.0.0.1:1"}, nil), nil, nil)
	assert.True(t, errors.Is(svc.Assign(context.Background(), []string{"l1"}, ""), errors.ErrValidation))
	assert.True(t, errors.Is(svc.Assign(context.Background(), nil, "s1"), errors.ErrValidation))
}
