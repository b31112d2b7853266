package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// RetryConfig controls retry behavior for requests to YouTube.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig never retries; a failed request surfaces immediately.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  0,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

func (rc RetryConfig) backOff() *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval: rc.InitialWait,
		MaxInterval:     rc.MaxWait,
		Multiplier:      rc.Multiplier,
	}
}

// retryTransport paces and optionally retries requests. Safe for concurrent use.
type retryTransport struct {
	next      http.RoundTripper
	limiter   *rate.Limiter
	retry     RetryConfig
	userAgent string
	logger    *slog.Logger
}

// newHTTPClient returns a copy of client whose transport is rate limited and
// retries gateway errors. The caller's client is left untouched.
func newHTTPClient(client *http.Client, rps float64, retry RetryConfig, userAgent string, logger *slog.Logger) *http.Client {
	c := &http.Client{Timeout: 30 * time.Second}
	if client != nil {
		copied := *client
		c = &copied
	}

	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	c.Transport = &retryTransport{
		next:      next,
		limiter:   rate.NewLimiter(limit, 1),
		retry:     retry,
		userAgent: userAgent,
		logger:    logger,
	}
	return c
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	operation := func() (*http.Response, error) {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := t.once(req)
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}

	notify := func(err error, wait time.Duration) {
		t.logger.Debug("retrying request",
			slog.String("url", req.URL.String()),
			slog.Duration("wait", wait),
			slog.Any("error", err))
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(t.retry.backOff()),
		backoff.WithMaxTries(uint(t.retry.MaxRetries+1)),
		backoff.WithNotify(notify))
}

// once sends a fresh copy of req so the body can be replayed on retries.
func (t *retryTransport) once(req *http.Request) (*http.Response, error) {
	attempt := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewinding request body: %w", err)
		}
		attempt.Body = body
	}
	if t.userAgent != "" {
		attempt.Header.Set("User-Agent", t.userAgent)
	}

	t.logger.Debug("request", slog.String("method", req.Method), slog.String("url", req.URL.String()))

	resp, err := t.next.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}

	if isRetryableStatus(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// httpStatusError is a server-side failure worth another attempt.
type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// isRetryable returns true for transient errors.
func isRetryable(err error) bool {
	var httpErr *httpStatusError
	if errors.As(err, &httpErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// isRetryableStatus reports gateway-style 5xx codes. 429 passes through and is
// mapped to ErrIPBlocked by the caller.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
