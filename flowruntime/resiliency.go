package flowruntime

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// computeBackoff is exponential backoff with jitter: base*2^attempt +
// jitter(0, base). There is no maximum-delay cap.
func computeBackoff(attempt int, base time.Duration, rng *rand.Rand) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base * time.Duration(int64(1)<<uint(attempt))
	jitter := time.Duration(rng.Int63n(int64(base) + 1))
	return delay + jitter
}

// runWithResiliency executes fn under node's NodeConfig envelope:
// maxRetries sequential attempts separated by a backoff based on
// retryDelay, each bounded by timeout if set. Once every attempt has failed
// it returns the last error; routing to a fallback node is left to the
// caller. onRetry, called before each further attempt, is optional (nil is
// fine).
func runWithResiliency(
	ctx context.Context,
	cfg *blueprint.NodeConfig,
	fn func(ctx context.Context) (any, error),
	onRetry func(attempt int, err error),
) (any, error) {
	maxAttempts := cfg.EffectiveMaxRetries()
	var retryDelay time.Duration
	var timeout time.Duration
	if cfg != nil {
		retryDelay = cfg.RetryDelay
		timeout = cfg.Timeout
	}

	rng := rand.New(rand.NewSource(1)) // nolint:gosec // deterministic jitter, not security-sensitive

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		out, err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return out, nil
		}
		if attemptCtx.Err() == context.DeadlineExceeded {
			err = errors.Join(err, context.DeadlineExceeded)
		}
		lastErr = err
		if onRetry != nil && attempt < maxAttempts-1 {
			onRetry(attempt+1, err)
		}
		if attempt < maxAttempts-1 && retryDelay > 0 {
			select {
			case <-time.After(computeBackoff(attempt, retryDelay, rng)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
