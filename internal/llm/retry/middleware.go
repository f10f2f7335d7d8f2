// Package retry implements transport middleware for retrying transient
// provider failures with capped exponential backoff and full jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/clauseline/clauseline/internal/llm/configuration"
	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

var (
	errMaxAttemptsInvalid     = errors.New("maxAttempts must be greater than 0")
	errInitialIntervalInvalid = errors.New("initialInterval must be greater than 0")
	errMaxIntervalInvalid     = errors.New("maxInterval must be >= initialInterval")
	errMultiplierInvalid      = errors.New("multiplier must be >= 1.0")

	errContextCancelledBeforeRetry = errors.New("context cancelled before retry")
	errContextCancelledDuringRetry = errors.New("context cancelled during retry")
	errAllRetriesExhausted         = errors.New("all retries exhausted")
)

type retryMiddleware struct {
	config configuration.RetryConfig
	logger *slog.Logger
}

// NewMiddleware creates retry middleware from the given policy. Backoff is
// exponential with full jitter, capped at MaxInterval; provider Retry-After
// guidance takes precedence when present.
func NewMiddleware(cfg configuration.RetryConfig) (transport.Middleware, error) {
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("%w, got %d", errMaxAttemptsInvalid, cfg.MaxAttempts)
	}
	if cfg.InitialInterval <= 0 {
		return nil, fmt.Errorf("%w, got %v", errInitialIntervalInvalid, cfg.InitialInterval)
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		return nil, fmt.Errorf("%w, MaxInterval: %v, InitialInterval: %v",
			errMaxIntervalInvalid, cfg.MaxInterval, cfg.InitialInterval)
	}
	if cfg.Multiplier < 1.0 {
		return nil, fmt.Errorf("%w, got %f", errMultiplierInvalid, cfg.Multiplier)
	}

	rm := &retryMiddleware{
		config: cfg,
		logger: slog.Default().With("component", "retry"),
	}
	return rm.middleware(), nil
}

func (r *retryMiddleware) middleware() transport.Middleware {
	return func(next transport.Handler) transport.Handler {
		return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", errContextCancelledBeforeRetry, ctx.Err())
			default:
			}

			var lastErr error
			for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
				resp, err := next.Handle(ctx, req)
				if err == nil {
					if attempt > 1 {
						r.logger.Info("request succeeded after retry",
							"attempt", attempt,
							"provider", req.Provider,
							"model", req.Model)
					}
					return resp, nil
				}

				if !isRetryable(err) {
					r.logger.Debug("non-retryable error",
						"error", err,
						"attempt", attempt,
						"provider", req.Provider)
					return nil, err
				}

				lastErr = err
				if attempt == r.config.MaxAttempts {
					break
				}

				backoff := r.calculateBackoff(attempt, err)
				r.logger.Debug("retrying after backoff",
					"attempt", attempt,
					"backoff", backoff,
					"error", err,
					"provider", req.Provider)

				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					return nil, fmt.Errorf("%w: %w", errContextCancelledDuringRetry, ctx.Err())
				}
			}

			return nil, fmt.Errorf("%w after %d attempts: %w",
				errAllRetriesExhausted, r.config.MaxAttempts, lastErr)
		})
	}
}

// isRetryable evaluates error types for retry eligibility. Content-filter
// blocks are never retried here; the client handles them with a backup
// model substitution instead.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *llmerrors.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.IsRetryable()
	}

	if errors.Is(err, llmerrors.ErrEmptyResponse) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return isNetworkError(err)
}

// isNetworkError detects network failures by type assertion first, falling
// back to string patterns for errors wrapped beyond recognition.
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var netErr net.Error
		if errors.As(urlErr.Err, &netErr) {
			return netErr.Timeout()
		}
		return isNetworkErrorByString(urlErr.Err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return isNetworkErrorByString(err.Error())
}

func isNetworkErrorByString(errStr string) bool {
	lowered := strings.ToLower(errStr)
	for _, indicator := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"eof",
	} {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}
	return false
}
