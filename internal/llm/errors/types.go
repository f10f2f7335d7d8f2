// Package errors defines the error taxonomy for LLM provider operations.
// Types determine whether operations are retried on the same model, whether
// the model is cooled down, and whether the fallback chain advances.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType categorizes provider failures for retry and fallback decisions.
type ErrorType string

const (
	// ErrorTypeTimeout indicates request timeout or deadline exceeded (retryable).
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeRateLimit indicates rate limit exceeded, retry with backoff (retryable).
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeNetwork indicates network connectivity issues (retryable).
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeProvider indicates provider service unavailable (retryable).
	ErrorTypeProvider ErrorType = "provider_unavailable"

	// ErrorTypeContent indicates content blocked by safety filters.
	// Not retried on the same model; the client may substitute a backup
	// model of the same provider exactly once.
	ErrorTypeContent ErrorType = "content_filtered"

	// ErrorTypeBadRequest indicates a malformed request or unknown model (non-retryable).
	ErrorTypeBadRequest ErrorType = "bad_request"

	// ErrorTypeAuth indicates authentication failed (non-retryable).
	ErrorTypeAuth ErrorType = "authentication"

	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Common operation errors for consistent handling across the pipeline.
var (
	// ErrNoProviders indicates that no provider has credentials configured.
	// This is the only configuration error that aborts a run outright.
	ErrNoProviders = errors.New("no provider credentials configured")

	// ErrUnknownProvider indicates an unknown or unsupported provider.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownModel indicates a model absent from the registry catalog.
	ErrUnknownModel = errors.New("unknown model")

	// ErrEmptyPrompt indicates an empty prompt was submitted.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrEmptyResponse indicates the provider returned no usable text (retryable).
	ErrEmptyResponse = errors.New("empty provider response")

	// ErrInvalidResponse indicates the provider returned an unparsable payload.
	ErrInvalidResponse = errors.New("invalid provider response")
)

// ProviderError captures structured error responses from LLM providers.
// Includes HTTP status codes, provider-specific error codes, and retry timing
// to enable appropriate retry behavior and error diagnosis.
type ProviderError struct {
	Provider   string    `json:"provider"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message"`
	Code       string    `json:"code"`
	Type       ErrorType `json:"type"`
	RetryAfter int       `json:"retry_after"` // Retry-After header value in seconds
}

// Error returns the formatted provider error with status code context.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsRetryable reports whether the error warrants a retry on the same model.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeNetwork, ErrorTypeProvider:
		return true
	default:
		return false
	}
}

// GetRetryAfter returns the provider-specified retry delay, if any.
func (e *ProviderError) GetRetryAfter() time.Duration {
	if e.RetryAfter > 0 {
		return time.Duration(e.RetryAfter) * time.Second
	}
	return 0
}

// IsRetryableError reports whether an error warrants a retry attempt on the
// same model. Permanent request errors and content-filter blocks advance the
// fallback chain instead.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.IsRetryable()
	}

	return errors.Is(err, ErrEmptyResponse)
}

// IsContentFiltered reports whether the error is a safety-filter block.
func IsContentFiltered(err error) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr) && provErr.Type == ErrorTypeContent
}

// GetRetryAfter extracts a retry-after duration from provider errors,
// or 0 if no specific guidance is available.
func GetRetryAfter(err error) time.Duration {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.GetRetryAfter()
	}
	return 0
}
