package apperr

import (
	"context"
	"log"
	"time"
)

// Backoff is a capped exponential retry policy. Attempts counts the first try.
type Backoff struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

var DefaultBackoff = Backoff{Attempts: 3, Base: time.Second, Max: 5 * time.Second}

// Delay is the wait before retry n (1-based): Base doubled n-1 times, capped at Max.
func (b Backoff) Delay(n int) time.Duration {
	d := b.Base
	for i := 1; i < n; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// Retry runs fn until it succeeds, fails with a non-transient error, the
// attempts run out or ctx is done. The last error is returned.
func Retry(ctx context.Context, b Backoff, op string, fn func(context.Context) error) error {
	attempts := max(b.Attempts, 1)
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(ctx); err == nil || !Retryable(err) || i == attempts {
			return err
		}
		d := b.Delay(i)
		log.Printf("[retry] %s attempt %d/%d failed: %v; retry in %s", op, i, attempts, err, d)
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
	return err
}

// RetryValue is Retry for calls that produce a value.
func RetryValue[T any](ctx context.Context, b Backoff, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := Retry(ctx, b, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}
