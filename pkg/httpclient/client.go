package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/richxcame/expense-tracker/pkg/logger"
	"github.com/richxcame/expense-tracker/pkg/resilience"
)

const defaultTimeout = 30 * time.Second

// Client is a small JSON-over-HTTP client bound to a base URL
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig *resilience.RetryConfig
}

// Option configures a Client
type Option func(*Client)

// NewClient creates a client. The first timeout, when positive, bounds every
// single request.
func NewClient(baseURL string, timeout ...time.Duration) *Client {
	t := defaultTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		t = timeout[0]
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: t},
	}
}

// WithRetry enables retries for every request made by the client
func WithRetry(config resilience.RetryConfig) Option {
	return func(c *Client) {
		if config.RetryableChecker == nil {
			config.RetryableChecker = isHTTPRetryable
		}
		c.retryConfig = &config
	}
}

// WithDefaultRetry retries 5xx, 429 and transport errors with the default policy
func WithDefaultRetry() Option {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryableChecker = isHTTPRetryable
	return WithRetry(cfg)
}

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Apply applies options to the client and returns it
func (c *Client) Apply(opts ...Option) *Client {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL requests are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPError is returned for non-2xx responses
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Get performs a GET request and returns the response body
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, headers)
}

// Post marshals body as JSON, performs a POST request and returns the response body
func (c *Client) Post(ctx context.Context, path string, body interface{}, headers map[string]string) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, path, payload, headers)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	if c.retryConfig == nil {
		return c.send(ctx, method, path, payload, headers)
	}

	cfg := *c.retryConfig
	if cfg.Name == "" {
		cfg.Name = method + " " + path
	}
	return resilience.Do(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return c.send(ctx, method, path, payload, headers)
	})
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(c.baseURL, path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func joinURL(base, path string) string {
	if base == "" {
		return path
	}
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// IsRetryable reports whether err is worth another attempt
func IsRetryable(err error) bool {
	return isHTTPRetryable(err)
}

// isHTTPRetryable retries transport errors, 5xx and 429. Other 4xx are final.
func isHTTPRetryable(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return resilience.IsRetryableHTTPStatus(httpErr.StatusCode)
	}
	return true
}
