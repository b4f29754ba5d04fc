// Package resilience retries transient registry API failures with
// exponential backoff. Only server-side errors (5xx) and network timeouts
// are retried; everything else fails fast.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"go.uber.org/zap"
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d", e.Code)
}

// IsTransient reports whether err is worth retrying: a 5xx status or a
// network timeout. 4xx responses and parse failures are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 && se.Code <= 599
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// RetryConfig controls retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// Operation names the call in retry log lines.
	Operation string
}

// DoVal executes fn with retries on transient errors. The backoff doubles
// per attempt with ±25% jitter. Context cancellation stops retries.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(lastErr) {
			return zero, lastErr
		}
		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		zap.L().Warn("retrying operation",
			zap.String("operation", cfg.Operation),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(backoff(attempt, cfg.InitialBackoff))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func backoff(attempt int, initial time.Duration) time.Duration {
	delay := float64(initial) * math.Pow(2, float64(attempt))
	jitter := delay * 0.25 * (rand.Float64()*2 - 1)
	d := time.Duration(delay + jitter)
	if d < 0 {
		d = 0
	}
	return d
}
