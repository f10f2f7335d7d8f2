package providers

import (
	"net/http"

	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
)

// classifyErrorType maps an HTTP status code to the error taxonomy.
// Transient codes (429, 408, 5xx) are eligible for retry and cooldown;
// the rest of the 4xx range is permanent and advances the fallback chain
// immediately.
func classifyErrorType(statusCode int) llmerrors.ErrorType {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return llmerrors.ErrorTypeRateLimit
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return llmerrors.ErrorTypeTimeout
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return llmerrors.ErrorTypeAuth
	case statusCode >= http.StatusInternalServerError:
		return llmerrors.ErrorTypeProvider
	case statusCode >= http.StatusBadRequest:
		return llmerrors.ErrorTypeBadRequest
	default:
		return llmerrors.ErrorTypeUnknown
	}
}

// retryAfterSeconds parses a Retry-After header as integral seconds,
// returning 0 when absent or not numeric.
func retryAfterSeconds(h http.Header) int {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0
		}
		secs = secs*10 + int(r-'0')
	}
	return secs
}
