package httpadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/nhle/sqs-console/internal/backend"
)

// ErrCircuitOpen is returned while the circuit breaker rejects requests
// after repeated backend failures.
var ErrCircuitOpen = errors.New("admin API unavailable: circuit breaker open")

// Client is a thin HTTP client for the SQS admin REST API.
// It handles optional Bearer token authentication, JSON marshaling,
// opt-in retry of GET requests on HTTP 429 and 5xx, and a circuit
// breaker so an outage fails fast instead of timing out every poll.
// POST requests mutate queues and are always sent exactly once.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	maxRetries int
	wait       func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the Bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxRetries sets how many times a 429/5xx response to a GET is
// retried. The default is zero.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithWaitFunc overrides the backoff wait between retries.
// This is intended for testing to avoid real delays.
func WithWaitFunc(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.wait = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new admin API client. The baseURL should be the
// root URL of the admin server (e.g., http://localhost:3999).
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		wait:       sleepContext,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "sqs-admin",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			// Client errors are answers, not outages.
			var berr *backend.Error
			if errors.As(err, &berr) {
				return berr.Status < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return c
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do runs the request through the circuit breaker and decodes the body.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	result any,
) error {
	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrCircuitOpen
		}
		return err
	}

	// No content to parse (e.g. 204 or an opaque action).
	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w",
			method, path, err,
		)
	}

	return nil
}

// roundTrip sends the request and returns the body of the first success.
// Only GET requests are retried; a 5xx to a POST may arrive after the
// server applied the mutation.
func (c *Client) roundTrip(
	ctx context.Context,
	method string,
	path string,
	body any,
) ([]byte, error) {
	url := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	maxRetries := c.maxRetries
	if method != http.MethodGet {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Rebuild the body reader on every attempt since it is consumed.
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		apiErr := &backend.Error{
			Status:  resp.StatusCode,
			Message: errorMessage(respBody),
		}

		if !retryable(resp.StatusCode) || attempt == maxRetries {
			return nil, apiErr
		}

		lastErr = apiErr
		waitDuration := retryAfterDuration(resp, attempt)
		c.logger.Debug("retrying admin API request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"attempt", attempt+1,
			"wait", waitDuration,
		)
		if err := c.wait(ctx, waitDuration); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf(
		"max retries (%d) exceeded: %w", maxRetries, lastErr,
	)
}

// errorMessage extracts the server-supplied message, or "" when the body
// carries none.
func errorMessage(body []byte) string {
	var resp ErrorResponse
	if json.Unmarshal(body, &resp) != nil {
		return ""
	}
	return resp.Message
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 250ms, 500ms, 1s, ...
	backoff := time.Duration(1<<uint(attempt)) * 250 * time.Millisecond
	if backoff > 5*time.Second {
		backoff = 5 * time.Second
	}
	return backoff
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
