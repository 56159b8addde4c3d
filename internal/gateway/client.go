// Package gateway is the typed REST client for the Libtak backend. Every
// screen in the terminal talks to the Gateway through it; the Gateway owns
// all business rules, persistence, and stock mutation, and this client only
// carries requests and surfaces the backend's answers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every Gateway request, matching the fixed wire-level
// timeout of the original client.
const DefaultTimeout = 10 * time.Second

// ErrUnauthorized marks any 401 from the Gateway. Matching it with errors.Is
// lets call sites distinguish a dead session from an ordinary rejection.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a structured Gateway rejection carrying the backend's
// human-readable message.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// TokenSource supplies the current bearer token, empty when logged out.
type TokenSource interface {
	Token() string
}

// Config holds the Gateway client settings.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8000/api".
	BaseURL string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond caps outgoing requests so an over-eager screen
	// cannot hammer the store's little server. Zero disables the limit.
	RequestsPerSecond float64
}

// Client is the HTTP Gateway client. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenSource
	limiter *rate.Limiter

	// onUnauthorized fires once per 401 response, before the error is
	// returned to the call site. Used to clear the session and bounce the
	// user to the login screen.
	onUnauthorized func()
}

// New creates a Client. tokens may not be nil; onUnauthorized may be.
func New(cfg Config, tokens TokenSource, onUnauthorized func()) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("gateway base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, errors.Wrap(err, "parse gateway base URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:        base,
		tokens:         tokens,
		limiter:        limiter,
		onUnauthorized: onUnauthorized,
	}, nil
}

// Health pings the Gateway's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/", nil, nil, nil)
}

// do performs one request: path is joined to the base URL, body (when
// non-nil) is sent as JSON, and a 2xx response is decoded into out (when
// non-nil). Errors carry the Gateway's message where one exists.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limit wait")
		}
	}

	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(ctx, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

// stream performs a request and hands the raw body to the caller on 2xx.
// The caller owns closing the returned body.
func (c *Client) stream(ctx context.Context, method, path string, query url.Values) (io.ReadCloser, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait")
		}
	}

	resp, err := c.send(ctx, method, path, query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		return nil, c.errorFromResponse(ctx, resp)
	}
	return resp.Body, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s %s request", method, path)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s request", method, path)
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}

	zctx.From(ctx).Debug("Gateway request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("took", time.Since(start)),
	)
	return resp, nil
}

// errorFromResponse turns a non-2xx response into an APIError and fires the
// unauthorized hook on 401.
func (c *Client) errorFromResponse(ctx context.Context, resp *http.Response) error {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		Message:   extractMessage(resp),
		RequestID: resp.Header.Get("X-Request-ID"),
	}

	if resp.StatusCode == http.StatusUnauthorized {
		zctx.From(ctx).Info("Session rejected by gateway")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
	return apiErr
}

// extractMessage pulls the backend's "detail" message out of an error body,
// falling back to the first field validation error, then to a generic line.
func extractMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || len(raw) == 0 {
		return genericMessage(resp.StatusCode)
	}

	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail.Detail != "" {
			return detail.Detail
		}
		if detail.Message != "" {
			return detail.Message
		}
	}

	// DRF validation errors come as {"field": ["problem", ...], ...}.
	var fields map[string][]string
	if err := json.Unmarshal(raw, &fields); err == nil {
		for field, msgs := range fields {
			if len(msgs) > 0 {
				return fmt.Sprintf("%s: %s", field, msgs[0])
			}
		}
	}
	return genericMessage(resp.StatusCode)
}

func genericMessage(status int) string {
	return fmt.Sprintf("gateway error (%s)", http.StatusText(status))
}
