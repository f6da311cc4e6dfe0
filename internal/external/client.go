// Package external is the boundary between the digest worker and third-party
// APIs. All outbound HTTP calls are routed through BaseClient, which enforces
// consistent resilience behavior: circuit breaking, optional retries with
// exponential backoff, run-ID propagation, and error mapping to
// types.AppError.
package external

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"matchday/internal/types"
)

// RetryPolicy configures the retry behavior of a BaseClient. A MaxRetries
// of zero means exactly one attempt; the digest email sends use that, since
// each email gets a single attempt per run.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// NoRetryPolicy returns a policy performing a single attempt.
func NoRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 0}
}

// BaseClient wraps an *http.Client and a circuit breaker so every provider
// client inherits the same resilience behavior.
type BaseClient struct {
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	retryPolicy RetryPolicy
	userAgent   string
	sleepFn     func(time.Duration) // for testability; defaults to time.Sleep
}

// BaseClientOption is a functional option for configuring a BaseClient.
type BaseClientOption func(*BaseClient)

// WithSleepFunc overrides the sleep function used between retries.
// Intended for tests to avoid real delays.
func WithSleepFunc(fn func(time.Duration)) BaseClientOption {
	return func(c *BaseClient) {
		c.sleepFn = fn
	}
}

// NewBaseClient creates a BaseClient with the given http client, breaker
// name, retry policy, and user agent.
func NewBaseClient(
	httpClient *http.Client,
	breakerName string,
	retryPolicy RetryPolicy,
	userAgent string,
	opts ...BaseClientOption,
) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	bc := &BaseClient{
		client:      httpClient,
		breaker:     cb,
		retryPolicy: retryPolicy,
		userAgent:   userAgent,
		sleepFn:     time.Sleep,
	}

	for _, opt := range opts {
		opt(bc)
	}

	return bc
}

// Do executes the HTTP request with:
//  1. Run-ID header injection (X-Run-Id from context)
//  2. User-Agent injection
//  3. Circuit breaker wrapping
//  4. Retry on 429/5xx when the policy allows it (respecting Retry-After)
//  5. Error mapping to types.AppError
//
// On a 2xx-4xx response other than 429, Do returns the response as-is and
// the caller is responsible for closing the body. On exhausted retries or an
// open circuit, Do returns a types.AppError with an upstream error code.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if runID := types.GetRunID(req.Context()); runID != "" {
		req.Header.Set("X-Run-Id", runID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	// Snapshot the body so it can be replayed on retries.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, types.NewAppError(
				types.ErrCodeInternalUnexpected,
				"failed to read request body for retry support",
				err,
			)
		}
		req.Body.Close()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryPolicy.MaxRetries; attempt++ {
		if attempt > 0 {
			c.sleepFn(c.backoff(attempt, lastErr))
		}

		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		// 429/5xx are surfaced as errors inside Execute so the breaker
		// counts them as failures.
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, doErr := c.client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
				return r, retryableStatusError(r)
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, types.NewAppError(
					types.ErrCodeUpstreamUnavailable,
					"circuit breaker open for "+c.breaker.Name(),
					err,
				)
			}
			if resp != nil {
				resp.Body.Close()
			}
			lastErr = err
			continue
		}

		return resp, nil
	}

	return nil, c.mapExhausted(lastErr)
}

// retryableHTTPError carries the status and Retry-After of a retryable
// response between attempts.
type retryableHTTPError struct {
	status     int
	retryAfter time.Duration
}

func (e *retryableHTTPError) Error() string {
	return "retryable upstream status " + strconv.Itoa(e.status)
}

func retryableStatusError(resp *http.Response) error {
	e := &retryableHTTPError{status: resp.StatusCode}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			e.retryAfter = time.Duration(secs) * time.Second
		}
	}
	return e
}

// backoff computes the wait before the given attempt, honoring Retry-After
// when the previous failure supplied one, otherwise using jittered
// exponential backoff bounded by the policy.
func (c *BaseClient) backoff(attempt int, lastErr error) time.Duration {
	var httpErr *retryableHTTPError
	if errors.As(lastErr, &httpErr) && httpErr.retryAfter > 0 {
		return httpErr.retryAfter
	}

	wait := time.Duration(float64(c.retryPolicy.MinWait) * math.Pow(2, float64(attempt-1)))
	if wait > c.retryPolicy.MaxWait {
		wait = c.retryPolicy.MaxWait
	}
	// Full jitter.
	if wait > 0 {
		wait = time.Duration(rand.Int64N(int64(wait)))
	}
	return wait
}

// mapExhausted translates the final failure into a types.AppError.
func (c *BaseClient) mapExhausted(lastErr error) error {
	var httpErr *retryableHTTPError
	if errors.As(lastErr, &httpErr) {
		if httpErr.status == http.StatusTooManyRequests {
			return types.NewAppError(
				types.ErrCodeUpstreamRateLimited,
				c.breaker.Name()+" rate limit exceeded",
				lastErr,
			)
		}
		return types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			c.breaker.Name()+" returned a server error",
			lastErr,
		)
	}
	return types.NewAppError(
		types.ErrCodeUpstreamUnavailable,
		c.breaker.Name()+" request failed",
		lastErr,
	)
}
