package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config defines retry behavior.
type Config struct {
	// MaxAttempts is the number of retries after the initial attempt, so the
	// operation runs at most MaxAttempts+1 times.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff: attempt n sleeps
	// BaseDelay * 2^n plus jitter before retrying.
	BaseDelay time.Duration
	// Jitter is the exclusive upper bound of the random delay added to each
	// backoff sleep. Zero disables jitter.
	Jitter time.Duration
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	Jitter:      1 * time.Second,
}

// Do executes op, retrying with exponential backoff on retryable failures.
// It stops immediately when ShouldRetry says the failure is not worth a
// retry, when attempts are exhausted, or when ctx is cancelled during the
// backoff sleep. The last failure is returned as-is.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts || !ShouldRetry(err) {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff(attempt, cfg)):
		}
	}

	return zero, lastErr
}

func backoff(attempt int, cfg Config) time.Duration {
	delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(2, float64(attempt)))
	if cfg.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(cfg.Jitter)))
	}
	return delay
}
