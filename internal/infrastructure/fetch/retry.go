package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrRetriesExhausted wraps the final failure once every attempt failed
	ErrRetriesExhausted = errors.New("fetch: retries exhausted")
	// ErrPaginationAborted wraps a page failure; rows collected before it are discarded
	ErrPaginationAborted = errors.New("fetch: pagination aborted")
)

// maxErrorBody bounds how much of a failed response body is kept for errors
const maxErrorBody = 4 << 10

// StatusError is a retryable HTTP status that outlived the retry budget
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// RetryPolicy configures exponential backoff. MaxRetries counts retries after
// the first attempt.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultRetryPolicy retries three times starting at one second
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialBackoff: time.Second}
}

// Retryable reports whether an HTTP status should be retried: server errors
// and rate limiting. Other client errors go back to the caller.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// sleepFunc waits for d or until ctx is done
type sleepFunc func(ctx context.Context, d time.Duration) error

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

// Client sends HTTP requests with retry and backoff
type Client struct {
	httpClient *http.Client
	policy     RetryPolicy
	logger     *zap.Logger
	sleep      sleepFunc
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for retry diagnostics
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// withSleep replaces the backoff sleep, for tests
func withSleep(fn sleepFunc) ClientOption {
	return func(c *Client) {
		c.sleep = fn
	}
}

// NewClient creates a retrying client
func NewClient(policy RetryPolicy, opts ...ClientOption) *Client {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     policy,
		logger:     zap.NewNop(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestFactory builds a fresh request for each attempt
type RequestFactory func(ctx context.Context) (*http.Request, error)

// Do sends the request built by newRequest. Transport errors, 5xx and 429
// responses are retried with doubling backoff. Any other response, including
// 4xx, is returned to the caller, who owns its body. When retries run out the
// last failure is returned wrapped in ErrRetriesExhausted.
func (c *Client) Do(ctx context.Context, newRequest RequestFactory) (*http.Response, error) {
	backoff := c.policy.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}

		req, err := newRequest(ctx)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if !Retryable(resp.StatusCode) {
			return resp, nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.policy.MaxRetries+1, lastErr)
}
