package faq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
)

func TestCreateSendsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in model.FAQ
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = "f1"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": in})
	}))
	defer server.Close()

	svc := NewService(httpclient.New(httpclient.Config{BaseURL: server.URL}, nil), nil, nil)
	created, err := svc.Create(context.Background(), model.FAQ{Question: "Shipping?", Answer: "Two days."})
	require.NoError(t, err)
	assert.Equal(t, "f1", created.ID)
	assert.Equal(t, "Shipping?", svc.Snapshot().Items[0].Question)
}
