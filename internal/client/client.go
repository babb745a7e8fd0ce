// ABOUTME: HTTP client for the meeting-scheduling backend
// ABOUTME: Attaches the session's bearer token to every authenticated call

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/markalston/slotbook/internal/session"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 30 * time.Second

// Client is the API gateway client for the scheduling backend
type Client struct {
	baseURL    string
	httpClient *http.Client // unauthenticated calls (login, register, health)
	authClient *http.Client // bearer-token calls
}

// Option configures a Client
type Option func(*options)

type options struct {
	timeout   time.Duration
	tokens    oauth2.TokenSource
	transport http.RoundTripper
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTokenSource supplies bearer tokens for authenticated calls. The source
// is consulted on every request.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) {
		o.tokens = ts
	}
}

// WithTransport overrides the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	o := options{
		timeout:   DefaultTimeout,
		tokens:    noSession{},
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   o.timeout,
			Transport: o.transport,
		},
		authClient: &http.Client{
			Timeout: o.timeout,
			Transport: &oauth2.Transport{
				Source: o.tokens,
				Base:   o.transport,
			},
		},
	}
}

// BaseURL returns the backend URL the client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

type noSession struct{}

func (noSession) Token() (*oauth2.Token, error) {
	return nil, session.ErrNoSession
}

// ErrorResponse represents an API error body. FastAPI-style services send
// "detail"; others send "error".
type ErrorResponse struct {
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

func (e ErrorResponse) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Detail
}

// HealthResponse represents the /health endpoint response
type HealthResponse struct {
	Status string `json:"status"`
}

// Health calls GET /health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, c.httpClient, http.MethodGet, "/health", nil, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// do issues a request and decodes a 2xx JSON response into out (if non-nil).
// Query parameters with empty values are dropped.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if q := compactQuery(query); len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		slog.Debug("Request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return c.handleRequestError(ctx, method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("Request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(method, path, resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{
			Method: method,
			Path:   path,
			Err:    fmt.Errorf("invalid response from backend: %w", err),
		}
	}
	return nil
}

// handleRequestError converts transport errors into RequestErrors with
// user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, method, path string, err error) error {
	re := &RequestError{Method: method, Path: path}
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		re.Err = fmt.Errorf("request canceled: %w", context.Canceled)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		re.Err = fmt.Errorf("request timed out: %w", context.DeadlineExceeded)
	case errors.Is(err, session.ErrNoSession):
		re.Err = fmt.Errorf("%w: run login first", session.ErrNoSession)
	default:
		re.Err = fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
	}
	return re
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(method, path string, resp *http.Response) error {
	re := &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		re.Message = errResp.message()
	}
	return re
}

func compactQuery(query url.Values) url.Values {
	if len(query) == 0 {
		return nil
	}
	out := url.Values{}
	for key, values := range query {
		for _, v := range values {
			if v != "" {
				out.Add(key, v)
			}
		}
	}
	return out
}
