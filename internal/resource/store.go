// Package resource is the generic list-resource store. One Store is created per
// entity and owns that entity's cached page, pagination, query and last error.
package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

type Record = model.Record

// Config describes one entity's endpoint and response shapes.
type Config[T Record] struct {
	// Name labels errors, logs and metrics.
	Name string
	// Path is the collection path, e.g. /api/customers.
	Path string
	// Normalize defaults to NormalizeEnvelope.
	Normalize Normalizer[T]
	// Decode defaults to DecodeRecord.
	Decode RecordDecoder[T]
	// SupportsGetByID is false for backends without GET {Path}/{id}.
	SupportsGetByID bool
	// ReadOnly rejects create, update and delete without a request.
	ReadOnly bool
	Metrics  *metrics.Metrics
}

// State is a point-in-time copy of the store.
type State[T Record] struct {
	Items      []T
	Pagination Pagination
	Query      Query
	Loading    bool
	Error      string
}

type Store[T Record] struct {
	client httpclient.Doer
	cfg    Config[T]
	logger *logger.Logger

	mu         sync.Mutex
	items      []T
	pagination Pagination
	query      Query
	loading    bool
	err        string

	// seq numbers list fetches; only the response for the latest seq is applied.
	seq    uint64
	cancel context.CancelFunc
}

func NewStore[T Record](client httpclient.Doer, cfg Config[T], log *logger.Logger) *Store[T] {
	if cfg.Normalize == nil {
		cfg.Normalize = NormalizeEnvelope[T]
	}
	if cfg.Decode == nil {
		cfg.Decode = DecodeRecord[T]
	}
	cfg.Path = "/" + strings.Trim(cfg.Path, "/")
	return &Store[T]{
		client: client,
		cfg:    cfg,
		logger: logger.OrNop(log).WithFields(map[string]interface{}{"resource": cfg.Name}),
		items:  make([]T, 0),
	}
}

func (s *Store[T]) Name() string {
	return s.cfg.Name
}

func (s *Store[T]) SupportsGetByID() bool {
	return s.cfg.SupportsGetByID
}

// FetchList replaces the cached page with the page matching q. Starting a
// fetch cancels the one in flight; a response that is no longer the latest is
// dropped with ErrSuperseded and leaves the store untouched.
func (s *Store[T]) FetchList(ctx context.Context, q Query) (Page[T], error) {
	if q.Page < 1 {
		return Page[T]{}, errors.NewValidation("page", "page must be at least 1")
	}
	if q.Limit <= 0 {
		return Page[T]{}, errors.NewValidation("limit", "limit must be greater than 0")
	}
	q = q.Clone()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.loading = true
	s.mu.Unlock()

	page, err := s.fetchPage(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.logger.Debug("discarding superseded list response", "seq", seq, "latest", s.seq)
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.StaleResponses.WithLabelValues(s.cfg.Name).Inc()
		}
		return Page[T]{}, errors.NewSuperseded(s.cfg.Name)
	}

	s.loading = false
	s.cancel = nil
	if err != nil {
		s.fail(err)
		return Page[T]{}, err
	}

	s.items = page.Items
	s.pagination = page.Pagination
	s.query = q
	s.err = ""
	return Page[T]{Items: cloneItems(page.Items), Pagination: page.Pagination}, nil
}

// Lookup fetches a page without touching the store, for dropdowns and other
// side lists.
func (s *Store[T]) Lookup(ctx context.Context, q Query) (Page[T], error) {
	return s.fetchPage(ctx, q.Normalize(DefaultLimit))
}

func (s *Store[T]) fetchPage(ctx context.Context, q Query) (Page[T], error) {
	resp, err := s.client.Do(ctx, httpclient.Request{
		Resource: s.cfg.Name,
		Method:   http.MethodGet,
		Path:     s.cfg.Path,
		Query:    q.Values(),
	})
	if err != nil {
		return Page[T]{}, err
	}
	page, err := s.cfg.Normalize(resp.Body, q)
	if err != nil {
		return Page[T]{}, errors.NewRequest(resp.Status, "", fmt.Errorf("normalize %s list: %w", s.cfg.Name, err))
	}
	return page, nil
}

// FetchByID loads one record and upserts it into the cached list.
func (s *Store[T]) FetchByID(ctx context.Context, id string) (T, error) {
	var zero T
	if !s.cfg.SupportsGetByID {
		return zero, errors.NewUnsupported(s.cfg.Name + " lookup by id")
	}
	if id == "" {
		return zero, errors.NewValidation("id", "id is required")
	}

	resp, err := s.client.Do(ctx, httpclient.Request{
		Resource: s.cfg.Name,
		Method:   http.MethodGet,
		Path:     s.recordPath(id),
	})
	if err != nil {
		if errors.StatusOf(err) == http.StatusNotFound {
			err = errors.NewNotFound(s.cfg.Name, err)
		}
		s.record(err)
		return zero, err
	}

	rec, err := s.decode(resp)
	if err != nil {
		s.record(err)
		return zero, err
	}
	if rec.RecordID() == "" {
		err = errors.NewNotFound(s.cfg.Name, nil)
		s.record(err)
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i] = rec
	} else {
		s.items = append(s.items, rec)
	}
	s.err = ""
	return rec, nil
}

// Create posts payload and prepends the created record. Identical payloads
// create distinct records.
func (s *Store[T]) Create(ctx context.Context, payload interface{}) (T, error) {
	var zero T
	if s.cfg.ReadOnly {
		return zero, errors.NewUnsupported("creating " + s.cfg.Name)
	}

	resp, err := s.client.Do(ctx, httpclient.Request{
		Resource: s.cfg.Name,
		Method:   http.MethodPost,
		Path:     s.cfg.Path,
		Body:     payload,
	})
	if err != nil {
		s.record(err)
		return zero, err
	}

	rec, err := s.decode(resp)
	if err == nil && rec.RecordID() == "" {
		err = errors.NewRequest(resp.Status, "", fmt.Errorf("created %s has no id", s.cfg.Name))
	}
	if err != nil {
		s.record(err)
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]T{rec}, s.items...)
	s.err = ""
	return rec, nil
}

// Update sends patch and replaces the cached record in place. When the backend
// answers without a record the patch is merged into the cached copy.
func (s *Store[T]) Update(ctx context.Context, id string, patch interface{}) (T, error) {
	var zero T
	if s.cfg.ReadOnly {
		return zero, errors.NewUnsupported("updating " + s.cfg.Name)
	}
	if id == "" {
		return zero, errors.NewValidation("id", "id is required")
	}

	resp, err := s.client.Do(ctx, httpclient.Request{
		Resource: s.cfg.Name,
		Method:   http.MethodPut,
		Path:     s.recordPath(id),
		Body:     patch,
	})
	if err != nil {
		s.record(err)
		return zero, err
	}

	rec, err := s.decode(resp)
	if err != nil {
		s.record(err)
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if rec.RecordID() == "" {
		var base T
		if i >= 0 {
			base = s.items[i]
		}
		merged, err := mergePatch(base, patch)
		if err != nil {
			appErr := errors.NewRequest(resp.Status, "", err)
			s.err = appErr.Message
			return zero, appErr
		}
		rec = merged
	}
	if i >= 0 {
		s.items[i] = rec
	}
	s.err = ""
	return rec, nil
}

// Delete removes the record from the backend and then from the cached list.
// Pagination.Total is left as is until the next fetch.
func (s *Store[T]) Delete(ctx context.Context, id string) (string, error) {
	if s.cfg.ReadOnly {
		return "", errors.NewUnsupported("deleting " + s.cfg.Name)
	}
	if id == "" {
		return "", errors.NewValidation("id", "id is required")
	}

	_, err := s.client.Do(ctx, httpclient.Request{
		Resource: s.cfg.Name,
		Method:   http.MethodDelete,
		Path:     s.recordPath(id),
	})
	if err != nil {
		s.record(err)
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
	s.err = ""
	return id, nil
}

// Apply runs fn on every cached record whose ID is in ids. Services use it to
// mirror a bulk mutation the backend has already accepted.
func (s *Store[T]) Apply(ids []string, fn func(T) T) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.items {
		if _, ok := want[rec.RecordID()]; ok {
			s.items[i] = fn(rec)
		}
	}
}

// Find returns the cached record with id.
func (s *Store[T]) Find(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State[T]{
		Items:      cloneItems(s.items),
		Pagination: s.pagination,
		Query:      s.query.Clone(),
		Loading:    s.loading,
		Error:      s.err,
	}
}

func (s *Store[T]) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

// Do issues a request scoped to this resource. Services use it for endpoints
// beyond plain CRUD; errors are recorded like any other operation.
func (s *Store[T]) Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
	req.Resource = s.cfg.Name
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		s.record(err)
		return nil, err
	}
	s.ClearError()
	return resp, nil
}

func (s *Store[T]) decode(resp *httpclient.Response) (T, error) {
	rec, err := s.cfg.Decode(resp.Body)
	if err != nil {
		return rec, errors.NewRequest(resp.Status, "", fmt.Errorf("decode %s: %w", s.cfg.Name, err))
	}
	return rec, nil
}

func (s *Store[T]) recordPath(id string) string {
	return s.cfg.Path + "/" + url.PathEscape(id)
}

// record keeps the message of a failed operation for the UI.
func (s *Store[T]) record(err error) {
	s.mu.Lock()
	s.fail(err)
	s.mu.Unlock()
}

func (s *Store[T]) fail(err error) {
	s.err = errors.Message(err, "")
	s.logger.Warn("resource operation failed", "error", err.Error())
}

func (s *Store[T]) indexOf(id string) int {
	for i, rec := range s.items {
		if rec.RecordID() == id {
			return i
		}
	}
	return -1
}

func cloneItems[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// mergePatch overlays the JSON form of patch onto a deep copy of base.
func mergePatch[T any](base T, patch interface{}) (T, error) {
	var merged T
	raw, err := json.Marshal(base)
	if err != nil {
		return merged, fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return merged, fmt.Errorf("copy record: %w", err)
	}
	raw, err = json.Marshal(patch)
	if err != nil {
		return merged, fmt.Errorf("encode patch: %w", err)
	}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return merged, fmt.Errorf("apply patch: %w", err)
	}
	return merged, nil
}
