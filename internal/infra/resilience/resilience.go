// Package resilience wraps outbound calls with retry, circuit
// breaking and concurrency limiting.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// RetryConfig controls RetryWithBackoff.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// RetryWithBackoff runs op up to MaxRetries+1 times with exponential
// backoff and jitter between attempts. It stops early when the
// context is done or when op returns a permanent error.
func RetryWithBackoff(ctx context.Context, logger *zap.Logger, cfg RetryConfig, name string, op func() error) error {
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	var err error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			var jitter time.Duration
			if half := int64(backoff) / 2; half > 0 {
				jitter = time.Duration(rand.Int63n(half))
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s aborted: %w", name, ctx.Err())
			case <-time.After(backoff + jitter):
			}
			backoff *= 2
			logger.Debug("retrying operation",
				zap.String("operation", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}

		err = op()
		if err == nil {
			return nil
		}
		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return err
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, cfg.MaxRetries+1, err)
}

// PermanentError marks an error that retrying cannot fix, such as a
// 4xx response. RetryWithBackoff unwraps and returns it immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so it is never retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// NewCircuitBreaker builds a breaker tuned for the remote store:
// it opens after 5 consecutive failures and probes again after 30s.
func NewCircuitBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// ErrBulkheadFull is returned when no slot frees up in time.
var ErrBulkheadFull = errors.New("bulkhead full")

// Bulkhead caps concurrent calls to a dependency.
type Bulkhead struct {
	slots   chan struct{}
	timeout time.Duration
}

// NewBulkhead allows up to max concurrent executions, waiting at
// most timeout for a slot.
func NewBulkhead(max int, timeout time.Duration) *Bulkhead {
	if max <= 0 {
		max = 1
	}
	return &Bulkhead{
		slots:   make(chan struct{}, max),
		timeout: timeout,
	}
}

// Execute runs op inside a slot or fails fast with ErrBulkheadFull.
func (b *Bulkhead) Execute(ctx context.Context, op func() error) error {
	select {
	case b.slots <- struct{}{}:
		defer func() { <-b.slots }()
		return op()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.timeout):
		return ErrBulkheadFull
	}
}
