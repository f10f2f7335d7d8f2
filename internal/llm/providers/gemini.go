package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/clauseline/clauseline/internal/llm/configuration"
	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

// harmCategories are the Gemini safety-filter categories configured on
// every request. Compliance text trips these filters routinely, so the
// threshold defaults to BLOCK_NONE.
var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// GeminiAdapter implements transport.ProviderAdapter for Google Gemini
// models via the generateContent API. Requests carry a generation config
// {temperature, maxOutputTokens} and an explicit safety-filter policy.
// A blocked candidate is surfaced as a content-filter error, which the
// client treats as a soft failure rather than a provider outage.
type GeminiAdapter struct {
	config configuration.ProviderConfig
}

// NewGeminiAdapter creates a Gemini provider adapter with default endpoint.
func NewGeminiAdapter(cfg configuration.ProviderConfig) *GeminiAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = configuration.DefaultGeminiEndpoint
	}
	if cfg.SafetyThreshold == "" {
		cfg.SafetyThreshold = configuration.SafetyThresholdNone
	}
	return &GeminiAdapter{config: cfg}
}

// Name returns the provider name.
func (a *GeminiAdapter) Name() string { return ProviderGemini }

// Build constructs the generateContent request with API key authentication
// and the safety-filter policy.
func (a *GeminiAdapter) Build(ctx context.Context, req *transport.Request) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		a.config.Endpoint, req.Model, a.config.APIKey)

	threshold := req.SafetyThreshold
	if threshold == "" {
		threshold = a.config.SafetyThreshold
	}

	safetySettings := make([]map[string]any, 0, len(harmCategories))
	for _, category := range harmCategories {
		safetySettings = append(safetySettings, map[string]any{
			"category":  category,
			"threshold": threshold,
		})
	}

	body := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": req.Prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     req.Temperature,
			"maxOutputTokens": req.MaxTokens,
		},
		"safetySettings": safetySettings,
	}

	if req.SystemPrompt != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{
				{"text": req.SystemPrompt},
			},
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// Parse extracts normalized data from a generateContent response.
// Candidates emptied by the safety filter become content-filter errors;
// a response with no candidates at all is treated the same way, since the
// prompt itself was blocked.
func (a *GeminiAdapter) Parse(httpResp *http.Response) (*transport.Response, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseGeminiError(httpResp.StatusCode, body, httpResp.Header)
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
			TotalTokenCount      int `json:"totalTokenCount"`
		} `json:"usageMetadata"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", llmerrors.ErrInvalidResponse, err)
	}

	if len(resp.Candidates) == 0 {
		reason := resp.PromptFeedback.BlockReason
		if reason == "" {
			reason = "no candidates returned"
		}
		return nil, blockedError(reason)
	}

	candidate := resp.Candidates[0]
	if blockedFinish(candidate.FinishReason) || len(candidate.Content.Parts) == 0 {
		return nil, blockedError(candidate.FinishReason)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	content := strings.TrimSpace(text.String())

	if content == "" {
		return nil, fmt.Errorf("%w: gemini returned no usable text", llmerrors.ErrEmptyResponse)
	}

	return &transport.Response{
		Content:      content,
		FinishReason: mapGeminiFinishReason(candidate.FinishReason),
		Usage: transport.Usage{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int64(resp.UsageMetadata.TotalTokenCount),
		},
		Headers: httpResp.Header,
		RawBody: body,
	}, nil
}

func blockedFinish(reason string) bool {
	switch strings.ToUpper(reason) {
	case "SAFETY", "BLOCKLIST", "PROHIBITED_CONTENT":
		return true
	default:
		return false
	}
}

func blockedError(reason string) error {
	return &llmerrors.ProviderError{
		Provider:   ProviderGemini,
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("response blocked by safety filters: %s", reason),
		Code:       "SAFETY_BLOCKED",
		Type:       llmerrors.ErrorTypeContent,
	}
}

func mapGeminiFinishReason(reason string) transport.FinishReason {
	switch strings.ToUpper(reason) {
	case "MAX_TOKENS":
		return transport.FinishLength
	case "SAFETY", "BLOCKLIST":
		return transport.FinishContentFilter
	default:
		return transport.FinishStop
	}
}

// parseGeminiError converts error responses to ProviderError.
func parseGeminiError(statusCode int, body []byte, header http.Header) error {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	provErr := &llmerrors.ProviderError{
		Provider:   ProviderGemini,
		StatusCode: statusCode,
		Message:    string(body),
		Type:       classifyErrorType(statusCode),
		RetryAfter: retryAfterSeconds(header),
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		provErr.Message = errResp.Error.Message
		provErr.Code = errResp.Error.Status
	}

	return provErr
}
