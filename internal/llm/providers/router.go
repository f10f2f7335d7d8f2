// Package providers implements the provider-specific adapters behind the
// transport.ProviderAdapter contract: Groq's OpenAI-compatible REST API and
// Google's Gemini generateContent API with safety-filter configuration.
package providers

import (
	"fmt"

	"github.com/clauseline/clauseline/internal/llm/configuration"
	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

// Supported provider identifiers. These constants must match the provider
// names used in configuration and the registry catalog.
const (
	ProviderGroq   = configuration.ProviderGroq
	ProviderGemini = configuration.ProviderGemini
)

// Router selects the appropriate provider adapter for request routing.
type Router interface {
	// Pick selects the adapter for the specified provider and model
	// combination. Returns an error if the provider is unknown or
	// unconfigured.
	Pick(provider, model string) (transport.ProviderAdapter, error)
}

// NewRouter creates a router with adapters for each configured provider.
func NewRouter(configs map[string]configuration.ProviderConfig) (Router, error) {
	adapters := make(map[string]transport.ProviderAdapter)

	for name, cfg := range configs {
		switch name {
		case ProviderGroq:
			adapters[name] = NewGroqAdapter(cfg)
		case ProviderGemini:
			adapters[name] = NewGeminiAdapter(cfg)
		default:
			return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, name)
		}
	}

	return &router{adapters: adapters}, nil
}

type router struct {
	adapters map[string]transport.ProviderAdapter
}

func (r *router) Pick(provider, _ string) (transport.ProviderAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, provider)
	}
	return adapter, nil
}
