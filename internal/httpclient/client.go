// Package httpclient is the console's single doorway to the admin backend. It
// scopes every request to the tenant, attaches the session token and turns
// every failure into a *errors.AppError.
package httpclient

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/jwalitptl/admin-console/pkg/circuitbreaker"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

const (
	HeaderTenant    = "x-tenant"
	HeaderRequestID = "X-Request-ID"
)

// TokenSource yields the bearer token for the current session, or "" when
// signed out.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Config struct {
	BaseURL string
	// Hostname is the host the console is served from; its first label is the
	// tenant. Tenant overrides it when set.
	Hostname string
	Tenant   string
	Timeout  time.Duration
}

// Request describes one backend call. Resource only labels logs and metrics.
type Request struct {
	Resource string
	Method   string
	Path     string
	Query    url.Values
	Body     interface{}
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Doer is the subset of Client the resource stores depend on.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

type Client struct {
	rc      *resty.Client
	tenant  string
	tokens  TokenSource
	logger  *logger.Logger
	metrics *metrics.Metrics
	breaker *circuitbreaker.CircuitBreaker
}

type Option func(*Client)

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = logger.OrNop(l) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBreaker fails calls fast while the backend keeps failing. Build b with
// NewBreaker so only backend faults count against it.
func WithBreaker(b *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = b }
}

// NewBreaker opens after failures consecutive backend faults and probes again
// after cooldown.
func NewBreaker(failures int, cooldown time.Duration) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "backend",
		MaxFailures: failures,
		Cooldown:    cooldown,
		IsFailure:   BackendFault,
	})
}

// BackendFault reports whether err means the backend is unhealthy: it could
// not be reached or answered 5xx. Cancelled requests and 4xx answers do not
// count.
func BackendFault(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return false
	}
	status := errors.StatusOf(err)
	return status == 0 || status >= http.StatusInternalServerError
}

func New(cfg Config, tokens TokenSource, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout)
	applyDefaults(rc)

	tenant := cfg.Tenant
	if tenant == "" {
		tenant = TenantFromHost(cfg.Hostname)
	}

	c := &Client{
		rc:     rc,
		tenant: tenant,
		tokens: tokens,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func applyDefaults(rc *resty.Client) {
	// Failed calls are surfaced to the user, who retries by hand.
	rc.SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// Tenant returns the tenant sent with every request.
func (c *Client) Tenant() string {
	return c.tenant
}

// TenantFromHost returns the first DNS label of hostname, ignoring any port.
func TenantFromHost(hostname string) string {
	host := strings.TrimSpace(hostname)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if i := strings.Index(host, "."); i >= 0 {
		return host[:i]
	}
	return host
}

func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.guard(req.Resource, func() (*Response, error) { return c.do(ctx, req) })
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	r := c.newRequest(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	start := time.Now()
	resp, err := r.Execute(method, req.Path)
	elapsed := time.Since(start)

	if err != nil {
		c.observe(req.Resource, method, "error", elapsed)
		c.logger.Debug("backend request failed",
			"resource", req.Resource, "method", method, "path", req.Path, "error", err.Error())
		return nil, transportError(err)
	}

	status := resp.StatusCode()
	c.observe(req.Resource, method, strconv.Itoa(status), elapsed)
	c.logger.Debug("backend request",
		"resource", req.Resource, "method", method, "path", req.Path,
		"status", status, "duration_ms", elapsed.Milliseconds())

	out := &Response{
		Status: status,
		Header: resp.Header(),
		Body:   resp.Body(),
	}
	if status < 200 || status >= 300 {
		return out, errors.NewRequest(status, backendMessage(out.Body), nil)
	}
	return out, nil
}

// Download fetches a binary payload. The JSON Accept header is replaced so
// the backend can stream a file.
func (c *Client) Download(ctx context.Context, resource, path string, query url.Values) (*Response, error) {
	return c.guard(resource, func() (*Response, error) { return c.download(ctx, resource, path, query) })
}

func (c *Client) download(ctx context.Context, resource, path string, query url.Values) (*Response, error) {
	r := c.newRequest(ctx).SetHeader("Accept", "*/*")
	if len(query) > 0 {
		r.SetQueryParamsFromValues(query)
	}

	start := time.Now()
	resp, err := r.Get(path)
	if err != nil {
		c.observe(resource, http.MethodGet, "error", time.Since(start))
		return nil, transportError(err)
	}
	c.observe(resource, http.MethodGet, strconv.Itoa(resp.StatusCode()), time.Since(start))

	out := &Response{Status: resp.StatusCode(), Header: resp.Header(), Body: resp.Body()}
	if resp.IsError() {
		return out, errors.NewRequest(out.Status, backendMessage(out.Body), nil)
	}
	return out, nil
}

func (c *Client) guard(resource string, call func() (*Response, error)) (*Response, error) {
	if c.breaker == nil {
		return call()
	}
	var out *Response
	err := c.breaker.Execute(func() error {
		var err error
		out, err = call()
		return err
	})
	if stderrors.Is(err, circuitbreaker.ErrOpen) {
		c.logger.Warn("backend calls suspended", "resource", resource, "breaker", c.breaker.Name())
		return nil, errors.NewRequest(0, "The server is not responding. Please try again shortly.", err)
	}
	return out, err
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.rc.R().
		SetContext(ctx).
		SetHeader(HeaderRequestID, uuid.NewString())
	if c.tenant != "" {
		r.SetHeader(HeaderTenant, c.tenant)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			r.SetAuthToken(token)
		}
	}
	return r
}

func (c *Client) observe(resource, method, status string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ClientRequests.WithLabelValues(resource, method, status).Inc()
	c.metrics.ClientLatency.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

func transportError(err error) *errors.AppError {
	if stderrors.Is(err, context.Canceled) {
		return errors.NewRequest(0, "request cancelled", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewRequest(0, "request timed out", err)
	}
	return errors.NewRequest(0, "", err)
}

// backendMessage digs the human message out of an error body. Backends have
// used message, msg, error and error.message over time.
func backendMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "msg", "error"} {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			if m, ok := v["message"].(string); ok && m != "" {
				return m
			}
		}
	}
	return ""
}
