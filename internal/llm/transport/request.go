package transport

import (
	"net/http"
	"time"
)

// Request is the provider-agnostic form of one prompt invocation.
// Adapters translate it into provider-specific wire requests.
type Request struct {
	// Provider identifies which LLM service to use ("groq"|"gemini").
	Provider string `json:"provider"`

	// Model specifies the exact model name at the provider.
	Model string `json:"model"`

	// Prompt is the fully rendered instruction block plus clause lines.
	Prompt string `json:"prompt"`

	// SystemPrompt provides standing instructions to the model, when the
	// provider supports a separate instruction channel.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Generation parameters control model behavior.
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`

	// SafetyThreshold configures the provider's content filter, for
	// providers that accept one.
	SafetyThreshold string `json:"safety_threshold,omitempty"`

	// Timeout bounds this single call. Zero means the HTTP client default.
	Timeout time.Duration `json:"timeout"`

	// IdempotencyKey deduplicates retried deliveries at the provider edge.
	IdempotencyKey string `json:"idempotency_key"`
}

// FinishReason normalizes why a provider stopped generating.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
)

// Response is the normalized output of one provider call.
type Response struct {
	// Content is the raw model text. Non-empty on success.
	Content string

	// FinishReason reports why generation stopped.
	FinishReason FinishReason

	// Degraded marks sentinel content substituted for a safety-filter
	// block; the call counts as a success but carries no judgment.
	Degraded bool

	// Usage reported by the provider, when available.
	Usage Usage

	// Diagnostics.
	Headers http.Header
	RawBody []byte
}

// Usage captures provider-reported token accounting and call latency.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	LatencyMs        int64
}
