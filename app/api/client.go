// Package api is the storefront's REST client.
//
// Every call attaches the current bearer token and turns a non-2xx response
// into an *Error whose Message is ready to show a shopper. A 401 from any
// endpoint invalidates the session through the OnUnauthorized hook before
// the error is returned.
package api

import (
	"context"
	"errors"
	"fmt"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sparkcrackers/storefront/config"
	sfhttp "github.com/sparkcrackers/storefront/pkg/http"
	"github.com/sparkcrackers/storefront/pkg/logger"
)

// TokenSource yields the bearer token for the next request, or "".
type TokenSource interface {
	Token() string
}

// Client talks to the REST backend rooted at a base URL.
type Client struct {
	base           string
	timeout        time.Duration
	tokens         TokenSource
	onUnauthorized func(context.Context)
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// OnUnauthorized registers the hook run for every 401 response.
func OnUnauthorized(fn func(context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for baseURL. An empty baseURL uses API_BASE_URL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = config.APIBaseURL()
	}
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		timeout: config.APITimeout(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Call describes one API request.
type Call struct {
	Method   string
	Path     string
	Query    map[string]string
	Header   map[string]string
	Body     any
	Endpoint string // metrics label, e.g. "cart.add"
	Fallback string // message used when neither the server nor the transport gave one
}

// Do sends call and decodes a 2xx body into out (when non-nil).
func (c *Client) Do(ctx context.Context, call Call, out any) error {
	req := sfhttp.New(call.Method, c.base+call.Path).
		WithContext(ctx).
		Timeout(c.timeout).
		Endpoint(call.Endpoint).
		Bearer(c.token())
	for k, v := range call.Query {
		req.Query(k, v)
	}
	for k, v := range call.Header {
		req.Header(k, v)
	}
	if call.Body != nil {
		req.Body(call.Body)
	}

	resp, err := req.Send()
	if err != nil {
		logger.WithCtx(ctx).Warn("api: transport error", "endpoint", call.Endpoint, "error", err)
		return &Error{Message: messageOr(err.Error(), call.Fallback), Err: err}
	}

	if !resp.OK() {
		if resp.StatusCode == gohttp.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		apiErr := &Error{Status: resp.StatusCode, Message: messageOr(resp.Message(), call.Fallback)}
		logger.WithCtx(ctx).Info("api: request rejected",
			"endpoint", call.Endpoint, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := resp.JSON(out); err != nil {
		return &Error{Status: resp.StatusCode, Message: messageOr("", call.Fallback), Err: err}
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path, endpoint, fallback string, out any) error {
	return c.Do(ctx, Call{Method: gohttp.MethodGet, Path: path, Endpoint: endpoint, Fallback: fallback}, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, endpoint, fallback string, out any) error {
	return c.Do(ctx, Call{Method: gohttp.MethodPost, Path: path, Body: body, Endpoint: endpoint, Fallback: fallback}, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, endpoint, fallback string, out any) error {
	return c.Do(ctx, Call{Method: gohttp.MethodPut, Path: path, Body: body, Endpoint: endpoint, Fallback: fallback}, out)
}

func (c *Client) Delete(ctx context.Context, path, endpoint, fallback string, out any) error {
	return c.Do(ctx, Call{Method: gohttp.MethodDelete, Path: path, Endpoint: endpoint, Fallback: fallback}, out)
}

// WebsocketURL maps an API path onto the ws:// or wss:// origin of the base
// URL.
func (c *Client) WebsocketURL(path string) (string, error) {
	u, err := url.Parse(c.base + path)
	if err != nil {
		return "", fmt.Errorf("api: websocket url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	return u.String(), nil
}

// AuthHeader returns the Authorization header for non-REST transports.
func (c *Client) AuthHeader() gohttp.Header {
	h := gohttp.Header{}
	if t := c.token(); t != "" {
		h.Set("Authorization", "Bearer "+t)
	}
	return h
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return "Something went wrong"
}

// Error is a failed API call. Status is 0 when no response arrived.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == gohttp.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
