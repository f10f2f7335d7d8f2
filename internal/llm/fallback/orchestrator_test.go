package fallback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauseline/clauseline/internal/llm"
	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
	"github.com/clauseline/clauseline/internal/llm/registry"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

// fakeInvoker scripts per-model outcomes and records invocation order.
type fakeInvoker struct {
	responses    map[string]*transport.Response
	errs         map[string]error
	unconfigured map[string]bool
	invoked      []string
}

func (f *fakeInvoker) Invoke(_ context.Context, _ string, d llm.Descriptor) (*transport.Response, error) {
	key := d.Provider + ":" + d.Model
	f.invoked = append(f.invoked, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if resp, ok := f.responses[key]; ok {
		return resp, nil
	}
	return &transport.Response{Content: "default"}, nil
}

func (f *fakeInvoker) Configured(provider string) bool {
	return !f.unconfigured[provider]
}

func testChain() []registry.Candidate {
	return []registry.Candidate{
		{Provider: "groq", Model: "model-a"},
		{Provider: "gemini", Model: "model-b"},
		{Provider: "gemini", Model: "model-c"},
	}
}

func transientErr(provider string) error {
	return &llmerrors.ProviderError{Provider: provider, StatusCode: 503, Type: llmerrors.ErrorTypeProvider}
}

func TestCompleteFirstCandidateSucceeds(t *testing.T) {
	inv := &fakeInvoker{
		responses: map[string]*transport.Response{"groq:model-a": {Content: "answer"}},
	}
	o := NewOrchestrator(inv, registry.NewRegistry(10*time.Minute))

	res, err := o.Complete(context.Background(), "prompt", testChain())

	require.NoError(t, err)
	assert.Equal(t, "answer", res.Text)
	assert.Equal(t, "groq", res.Provider)
	assert.Equal(t, "model-a", res.Model)
	assert.False(t, res.FallbackUsed)
	assert.Equal(t, []string{"groq:model-a"}, inv.invoked)
}

func TestCompleteFallbackOrdering(t *testing.T) {
	inv := &fakeInvoker{
		errs: map[string]error{
			"groq:model-a":   transientErr("groq"),
			"gemini:model-b": transientErr("gemini"),
		},
		responses: map[string]*transport.Response{"gemini:model-c": {Content: "third time lucky"}},
	}
	reg := registry.NewRegistry(10 * time.Minute)
	o := NewOrchestrator(inv, reg)

	res, err := o.Complete(context.Background(), "prompt", testChain())

	require.NoError(t, err)
	assert.Equal(t, []string{"groq:model-a", "gemini:model-b", "gemini:model-c"}, inv.invoked)
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, "model-c", res.Model)
	assert.True(t, res.FallbackUsed)

	// Failed candidates are cooled down, the winner is not.
	assert.False(t, reg.Available("groq", "model-a"))
	assert.False(t, reg.Available("gemini", "model-b"))
	assert.True(t, reg.Available("gemini", "model-c"))

	require.Len(t, res.Attempts, 3)
	assert.Error(t, res.Attempts[0].Err)
	assert.True(t, res.Attempts[2].Succeeded)
}

func TestCompleteSkipsUnconfiguredProvider(t *testing.T) {
	inv := &fakeInvoker{
		unconfigured: map[string]bool{"groq": true},
		responses:    map[string]*transport.Response{"gemini:model-b": {Content: "ok"}},
	}
	o := NewOrchestrator(inv, registry.NewRegistry(10*time.Minute))

	res, err := o.Complete(context.Background(), "prompt", testChain())

	require.NoError(t, err)
	assert.Equal(t, []string{"gemini:model-b"}, inv.invoked)
	// A skip without an invocation does not count as fallback.
	assert.False(t, res.FallbackUsed)
	assert.True(t, res.Attempts[0].Skipped)
}

func TestCompleteSkipsCooledDownModel(t *testing.T) {
	inv := &fakeInvoker{
		responses: map[string]*transport.Response{"gemini:model-b": {Content: "ok"}},
	}
	reg := registry.NewRegistry(10 * time.Minute)
	reg.MarkFailed("groq", "model-a")
	o := NewOrchestrator(inv, reg)

	res, err := o.Complete(context.Background(), "prompt", testChain())

	require.NoError(t, err)
	assert.Equal(t, []string{"gemini:model-b"}, inv.invoked)
	assert.Equal(t, "model-b", res.Model)
}

func TestCompleteChainExhausted(t *testing.T) {
	lastErr := transientErr("gemini")
	inv := &fakeInvoker{
		errs: map[string]error{
			"groq:model-a":   transientErr("groq"),
			"gemini:model-b": transientErr("gemini"),
			"gemini:model-c": lastErr,
		},
	}
	reg := registry.NewRegistry(10 * time.Minute)
	o := NewOrchestrator(inv, reg)

	_, err := o.Complete(context.Background(), "prompt", testChain())

	require.ErrorIs(t, err, ErrChainExhausted)
	var provErr *llmerrors.ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.False(t, reg.Available("gemini", "model-c"))
}

func TestCompleteAllSkipped(t *testing.T) {
	inv := &fakeInvoker{unconfigured: map[string]bool{"groq": true, "gemini": true}}
	o := NewOrchestrator(inv, registry.NewRegistry(10*time.Minute))

	_, err := o.Complete(context.Background(), "prompt", testChain())

	assert.ErrorIs(t, err, ErrChainExhausted)
	assert.Empty(t, inv.invoked)
}

func TestCompleteDegradedResponseCountsAsSuccess(t *testing.T) {
	inv := &fakeInvoker{
		responses: map[string]*transport.Response{
			"groq:model-a": {Content: llm.BlockedSentinel, Degraded: true},
		},
	}
	o := NewOrchestrator(inv, registry.NewRegistry(10*time.Minute))

	res, err := o.Complete(context.Background(), "prompt", testChain())

	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, llm.BlockedSentinel, res.Text)
}

func TestCompleteCancelledContext(t *testing.T) {
	inv := &fakeInvoker{}
	o := NewOrchestrator(inv, registry.NewRegistry(10*time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Complete(ctx, "prompt", testChain())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, inv.invoked)
}
