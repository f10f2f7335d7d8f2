package llm

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauseline/clauseline/internal/llm/configuration"
	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

func configuredConfig(t *testing.T) *configuration.Config {
	t.Helper()
	cfg := configuration.DefaultConfig()
	for name, pc := range cfg.Providers {
		pc.APIKey = "test-key"
		cfg.Providers[name] = pc
	}
	return cfg
}

func TestNewClientNoCredentials(t *testing.T) {
	cfg := configuration.DefaultConfig()

	_, err := NewClient(cfg)

	assert.ErrorIs(t, err, llmerrors.ErrNoProviders)
}

func TestNewClientInvalidConfig(t *testing.T) {
	cfg := configuredConfig(t)
	cfg.Batch.TokenBudget = 0

	_, err := NewClient(cfg)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, llmerrors.ErrNoProviders)
}

func TestNewClientPartialCredentials(t *testing.T) {
	cfg := configuration.DefaultConfig()
	pc := cfg.Providers[configuration.ProviderGroq]
	pc.APIKey = "gsk_only"
	cfg.Providers[configuration.ProviderGroq] = pc

	client, err := NewClient(cfg)

	require.NoError(t, err)
	assert.True(t, client.Configured(configuration.ProviderGroq))
	assert.False(t, client.Configured(configuration.ProviderGemini))
}

// scriptedHandler substitutes the transport stack so Invoke's policy can be
// exercised without HTTP.
type scriptedHandler struct {
	requests  []*transport.Request
	responses []func(*transport.Request) (*transport.Response, error)
}

func (s *scriptedHandler) Handle(_ context.Context, req *transport.Request) (*transport.Response, error) {
	i := len(s.requests)
	s.requests = append(s.requests, req)
	return s.responses[i](req)
}

func testClient(t *testing.T, handler transport.Handler) *Client {
	t.Helper()
	return &Client{
		handler: handler,
		cfg:     configuredConfig(t),
		logger:  slog.Default(),
	}
}

func blockedErr() error {
	return &llmerrors.ProviderError{
		Provider: "gemini",
		Type:     llmerrors.ErrorTypeContent,
		Message:  "blocked",
	}
}

func TestInvokeEmptyPrompt(t *testing.T) {
	client := testClient(t, &scriptedHandler{})

	_, err := client.Invoke(context.Background(), "   ", Descriptor{Provider: "groq", Model: "m"})

	assert.ErrorIs(t, err, llmerrors.ErrEmptyPrompt)
}

func TestInvokeSuccess(t *testing.T) {
	handler := &scriptedHandler{responses: []func(*transport.Request) (*transport.Response, error){
		func(_ *transport.Request) (*transport.Response, error) {
			return &transport.Response{Content: "result"}, nil
		},
	}}
	client := testClient(t, handler)

	resp, err := client.Invoke(context.Background(), "prompt", Descriptor{Provider: "groq", Model: "m"})

	require.NoError(t, err)
	assert.Equal(t, "result", resp.Content)
	assert.False(t, resp.Degraded)

	req := handler.requests[0]
	assert.Equal(t, "groq", req.Provider)
	assert.NotEmpty(t, req.IdempotencyKey)
	// Groq requests carry no compliance system prompt.
	assert.Empty(t, req.SystemPrompt)
}

func TestInvokeGeminiCarriesComplianceContext(t *testing.T) {
	handler := &scriptedHandler{responses: []func(*transport.Request) (*transport.Response, error){
		func(_ *transport.Request) (*transport.Response, error) {
			return &transport.Response{Content: "ok"}, nil
		},
	}}
	client := testClient(t, handler)

	_, err := client.Invoke(context.Background(), "prompt", Descriptor{Provider: "gemini", Model: "gemini-2.5-flash"})

	require.NoError(t, err)
	req := handler.requests[0]
	assert.Equal(t, complianceContext, req.SystemPrompt)
	assert.Equal(t, configuration.SafetyThresholdNone, req.SafetyThreshold)
}

func TestInvokeBlockedSubstitutesBackupOnce(t *testing.T) {
	handler := &scriptedHandler{responses: []func(*transport.Request) (*transport.Response, error){
		func(_ *transport.Request) (*transport.Response, error) { return nil, blockedErr() },
		func(_ *transport.Request) (*transport.Response, error) {
			return &transport.Response{Content: "from backup"}, nil
		},
	}}
	client := testClient(t, handler)

	resp, err := client.Invoke(context.Background(), "prompt", Descriptor{Provider: "gemini", Model: "gemini-2.5-flash"})

	require.NoError(t, err)
	assert.Equal(t, "from backup", resp.Content)
	assert.True(t, resp.Degraded)

	require.Len(t, handler.requests, 2)
	assert.Equal(t, configuration.DefaultGeminiBackupModel, handler.requests[1].Model)
}

func TestInvokeBlockedBackupAlsoBlockedReturnsSentinel(t *testing.T) {
	handler := &scriptedHandler{responses: []func(*transport.Request) (*transport.Response, error){
		func(_ *transport.Request) (*transport.Response, error) { return nil, blockedErr() },
		func(_ *transport.Request) (*transport.Response, error) { return nil, blockedErr() },
	}}
	client := testClient(t, handler)

	resp, err := client.Invoke(context.Background(), "prompt", Descriptor{Provider: "gemini", Model: "gemini-2.5-flash"})

	require.NoError(t, err)
	assert.Equal(t, BlockedSentinel, resp.Content)
	assert.True(t, resp.Degraded)
	assert.Equal(t, transport.FinishContentFilter, resp.FinishReason)
	assert.Len(t, handler.requests, 2)
}

func TestInvokeBlockedNoBackupReturnsSentinel(t *testing.T) {
	handler := &scriptedHandler{responses: []func(*transport.Request) (*transport.Response, error){
		func(_ *transport.Request) (*transport.Response, error) { return nil, blockedErr() },
	}}
	client := testClient(t, handler)
	// Groq has no backup model configured.
	resp, err := client.Invoke(context.Background(), "prompt", Descriptor{Provider: "groq", Model: "llama-3.3-70b-versatile"})

	require.NoError(t, err)
	assert.Equal(t, BlockedSentinel, resp.Content)
	assert.Len(t, handler.requests, 1)
}

func TestInvokeBlockedOnBackupModelItself(t *testing.T) {
	handler := &scriptedHandler{responses: []func(*transport.Request) (*transport.Response, error){
		func(_ *transport.Request) (*transport.Response, error) { return nil, blockedErr() },
	}}
	client := testClient(t, handler)

	// Already invoking the backup model: no second substitution.
	resp, err := client.Invoke(context.Background(), "prompt",
		Descriptor{Provider: "gemini", Model: configuration.DefaultGeminiBackupModel})

	require.NoError(t, err)
	assert.Equal(t, BlockedSentinel, resp.Content)
	assert.Len(t, handler.requests, 1)
}

func TestInvokeBackupHardFailurePropagates(t *testing.T) {
	hardErr := &llmerrors.ProviderError{Provider: "gemini", Type: llmerrors.ErrorTypeProvider}
	handler := &scriptedHandler{responses: []func(*transport.Request) (*transport.Response, error){
		func(_ *transport.Request) (*transport.Response, error) { return nil, blockedErr() },
		func(_ *transport.Request) (*transport.Response, error) { return nil, hardErr },
	}}
	client := testClient(t, handler)

	_, err := client.Invoke(context.Background(), "prompt", Descriptor{Provider: "gemini", Model: "gemini-2.5-flash"})

	var provErr *llmerrors.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, llmerrors.ErrorTypeProvider, provErr.Type)
}

func TestInvokeUnknownProvider(t *testing.T) {
	client := testClient(t, &scriptedHandler{})

	_, err := client.Invoke(context.Background(), "prompt", Descriptor{Provider: "openai", Model: "gpt-4"})

	assert.ErrorIs(t, err, llmerrors.ErrUnknownProvider)
}

func TestInvokeBlankContentIsEmptyResponse(t *testing.T) {
	handler := &scriptedHandler{responses: []func(*transport.Request) (*transport.Response, error){
		func(_ *transport.Request) (*transport.Response, error) {
			return &transport.Response{Content: "   "}, nil
		},
	}}
	client := testClient(t, handler)

	_, err := client.Invoke(context.Background(), "prompt", Descriptor{Provider: "groq", Model: "m"})

	assert.ErrorIs(t, err, llmerrors.ErrEmptyResponse)
}

func TestTransient(t *testing.T) {
	assert.True(t, Transient(&llmerrors.ProviderError{Type: llmerrors.ErrorTypeRateLimit}))
	assert.True(t, Transient(context.DeadlineExceeded))
	assert.False(t, Transient(&llmerrors.ProviderError{Type: llmerrors.ErrorTypeBadRequest}))
	assert.False(t, Transient(nil))
}
