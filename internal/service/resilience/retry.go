package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"time"

	xhttp "ShipQuote/pkg/http"
)

// RetryPolicy configures exponential backoff with jitter.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the service-wide defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// delay computes the backoff before the next attempt (attempt is 1-based).
// Equal jitter: half deterministic, half random, capped at MaxDelay.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(rand.Int64N(int64(half)+1))
}

// Retryable reports whether an outcome is worth retrying: timeouts, network
// errors and HTTP 5xx/429. Validation and other 4xx propagate immediately.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500
	}

	var ne net.Error
	return errors.As(err, &ne)
}
