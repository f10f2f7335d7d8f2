package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/clauseline/clauseline/internal/llm/configuration"
	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

// GroqAdapter implements transport.ProviderAdapter for Groq's
// OpenAI-compatible chat/completions API. The wire format is
// {model, messages:[{role, content}], temperature, max_tokens} in and
// {choices:[{message:{content}}]} out.
type GroqAdapter struct {
	config configuration.ProviderConfig
}

// NewGroqAdapter creates a Groq provider adapter with default endpoint.
func NewGroqAdapter(cfg configuration.ProviderConfig) *GroqAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = configuration.DefaultGroqEndpoint
	}
	return &GroqAdapter{config: cfg}
}

// Name returns the provider name.
func (a *GroqAdapter) Name() string { return ProviderGroq }

// Build constructs the chat/completions request with bearer authentication.
func (a *GroqAdapter) Build(ctx context.Context, req *transport.Request) (*http.Request, error) {
	messages := []map[string]any{}

	if req.SystemPrompt != "" {
		messages = append(messages, map[string]any{
			"role":    "system",
			"content": req.SystemPrompt,
		})
	}

	messages = append(messages, map[string]any{
		"role":    "user",
		"content": req.Prompt,
	})

	body := map[string]any{
		"model":       req.Model,
		"messages":    messages,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.Endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.config.APIKey))

	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// Parse extracts normalized data from a chat/completions response.
// An empty content field is reported as ErrEmptyResponse so the retry
// layer treats it as transient.
func (a *GroqAdapter) Parse(httpResp *http.Response) (*transport.Response, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseGroqError(httpResp.StatusCode, body, httpResp.Header)
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", llmerrors.ErrInvalidResponse, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: groq returned no choices", llmerrors.ErrEmptyResponse)
	}

	return &transport.Response{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: mapGroqFinishReason(resp.Choices[0].FinishReason),
		Usage: transport.Usage{
			PromptTokens:     int64(resp.Usage.PromptTokens),
			CompletionTokens: int64(resp.Usage.CompletionTokens),
			TotalTokens:      int64(resp.Usage.TotalTokens),
		},
		Headers: httpResp.Header,
		RawBody: body,
	}, nil
}

func mapGroqFinishReason(reason string) transport.FinishReason {
	switch reason {
	case "length":
		return transport.FinishLength
	case "content_filter":
		return transport.FinishContentFilter
	default:
		return transport.FinishStop
	}
}

// parseGroqError converts error responses to ProviderError, extracting
// details from the OpenAI-style error envelope when present.
func parseGroqError(statusCode int, body []byte, header http.Header) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	provErr := &llmerrors.ProviderError{
		Provider:   ProviderGroq,
		StatusCode: statusCode,
		Message:    string(body),
		Type:       classifyErrorType(statusCode),
		RetryAfter: retryAfterSeconds(header),
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		provErr.Message = errResp.Error.Message
		provErr.Code = errResp.Error.Code
	}

	return provErr
}
