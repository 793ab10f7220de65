package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/pkg/errors"
)

type item struct {
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

func (i item) RecordID() string { return i.ID }

type doFunc func(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)

// fakeDoer records requests and answers through fn.
type fakeDoer struct {
	mu       sync.Mutex
	requests []httpclient.Request
	fn       doFunc
}

func (f *fakeDoer) Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.fn
	f.mu.Unlock()
	return fn(ctx, req)
}

func (f *fakeDoer) calls() []httpclient.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]httpclient.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func jsonResponse(status int, v interface{}) *httpclient.Response {
	body, _ := json.Marshal(v)
	return &httpclient.Response{Status: status, Header: http.Header{}, Body: body}
}

func ok(v interface{}) (*httpclient.Response, error) {
	return jsonResponse(http.StatusOK, v), nil
}

func failWith(status int, msg string) (*httpclient.Response, error) {
	return jsonResponse(status, map[string]string{"message": msg}), errors.NewRequest(status, msg, nil)
}

func flatPage(items []item, total int) map[string]interface{} {
	return map[string]interface{}{"items": items, "total": total}
}
