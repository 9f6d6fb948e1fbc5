// Package resilience wraps outbound calls with a circuit breaker, retry with
// exponential backoff, and in-flight deduplication of identical requests.
package resilience

import (
	"context"
	"fmt"
	"time"

	applogger "ShipQuote/pkg/logger"
	"ShipQuote/pkg/util"

	"golang.org/x/sync/singleflight"
)

// Client guards one remote dependency.
type Client struct {
	name    string
	breaker *Breaker
	retry   RetryPolicy
	group   singleflight.Group
	logger  *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithLogger sets a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTransitionHook forwards breaker transitions (e.g. to metrics).
func WithTransitionHook(fn TransitionFunc) Option {
	return func(c *Client) {
		c.breaker.WithTransitionHook(fn)
	}
}

// New creates a resilient client for the named dependency.
func New(name string, bcfg BreakerConfig, retry RetryPolicy, opts ...Option) *Client {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	c := &Client{
		name:    name,
		breaker: NewBreaker(name, bcfg),
		retry:   retry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the dependency name.
func (c *Client) Name() string { return c.name }

// CircuitState returns the current breaker state.
func (c *Client) CircuitState() State { return c.breaker.State() }

// Key builds a normalized dedup key from request parts.
func Key(parts ...string) string {
	return util.NormalizeKey(parts...)
}

// Do runs fn under the breaker and retry policy. Concurrent calls sharing the
// same key are coalesced into a single execution; every caller receives the
// settled result.
func (c *Client) Do(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.execute(ctx, fn)
	})
	return v, err
}

func (c *Client) execute(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	attempts := c.retry.MaxAttempts
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.breaker.Allow(); err != nil {
			return nil, err
		}

		v, err := fn(ctx)
		if err == nil {
			c.breaker.OnSuccess()
			return v, nil
		}
		c.breaker.OnFailure()
		lastErr = err

		if !Retryable(err) || attempt == attempts {
			return nil, err
		}

		delay := c.retry.delay(attempt)
		if c.logger != nil {
			c.logger.Debug("retrying call",
				applogger.String("dependency", c.name),
				applogger.Int("attempt", attempt),
				applogger.Duration("backoff", delay),
				applogger.Error(err),
			)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// Do is the typed wrapper around Client.Do.
func Do[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Do(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("resilience: unexpected result type %T", v)
	}
	return out, nil
}
