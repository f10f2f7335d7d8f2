package retry

import (
	"math/rand"
	"time"

	"github.com/clauseline/clauseline/internal/llm/configuration"
	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
)

// calculateBackoff computes the delay before the next attempt. Provider
// Retry-After guidance wins when present; otherwise exponential backoff
// capped at MaxInterval, with full jitter when enabled.
func (r *retryMiddleware) calculateBackoff(attempt int, err error) time.Duration {
	if after := llmerrors.GetRetryAfter(err); after > 0 {
		return after
	}
	return ExponentialBackoff(attempt, r.config)
}

// ExponentialBackoff calculates the delay for a given attempt number under
// the policy. With jitter enabled the result is uniform in [0, backoff].
// Thread-safe via math/rand. Returns zero for non-positive attempts.
func ExponentialBackoff(attempt int, cfg configuration.RetryConfig) time.Duration {
	if attempt <= 0 {
		return 0
	}

	backoff := cfg.InitialInterval
	if backoff <= 0 {
		backoff = time.Millisecond
	}
	for i := 1; i < attempt; i++ {
		multiplier := cfg.Multiplier
		if multiplier < 1.0 {
			multiplier = 1.0
		}
		backoff = time.Duration(float64(backoff) * multiplier)
		if backoff > cfg.MaxInterval {
			backoff = cfg.MaxInterval
			break
		}
	}

	if cfg.UseJitter {
		jitterMs := rand.Int63n(backoff.Milliseconds() + 1) // #nosec G404 -- non-cryptographic jitter
		return time.Duration(jitterMs) * time.Millisecond
	}

	return backoff
}
