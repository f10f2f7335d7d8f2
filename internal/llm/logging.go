package llm

import (
	"context"
	"log/slog"
	"time"

	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

// NewLoggingMiddleware wraps a handler with structured request lifecycle
// logging. Prompt bodies are never logged, only their lengths.
func NewLoggingMiddleware(logger *slog.Logger) transport.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next transport.Handler) transport.Handler {
		return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			start := time.Now()
			logger.Debug("llm request started",
				"provider", req.Provider,
				"model", req.Model,
				"prompt_len", len(req.Prompt),
				"idempotency_key", req.IdempotencyKey)

			resp, err := next.Handle(ctx, req)
			elapsed := time.Since(start)

			if err != nil {
				logger.Warn("llm request failed",
					"provider", req.Provider,
					"model", req.Model,
					"duration_ms", elapsed.Milliseconds(),
					"retryable", llmerrors.IsRetryableError(err),
					"error", err)
				return nil, err
			}

			logger.Info("llm request completed",
				"provider", req.Provider,
				"model", req.Model,
				"duration_ms", elapsed.Milliseconds(),
				"prompt_tokens", resp.Usage.PromptTokens,
				"completion_tokens", resp.Usage.CompletionTokens,
				"finish_reason", resp.FinishReason,
				"degraded", resp.Degraded)
			return resp, nil
		})
	}
}
