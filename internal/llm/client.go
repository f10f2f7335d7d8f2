// Package llm assembles the provider transport stack into a Client:
// router, HTTP handler, retry and logging middleware, plus the
// content-filter substitution policy for safety-blocked responses.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/clauseline/clauseline/internal/llm/configuration"
	llmerrors "github.com/clauseline/clauseline/internal/llm/errors"
	"github.com/clauseline/clauseline/internal/llm/providers"
	"github.com/clauseline/clauseline/internal/llm/retry"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

// complianceContext frames prompts sent to safety-filtered providers as
// legitimate legal analysis. Without it, contract clauses about liability
// or penalties trip the content filters often enough to matter.
const complianceContext = "You are a professional regulatory compliance assistant " +
	"analyzing legal documents for a business compliance system. " +
	"This is a legitimate legal analysis task for compliance purposes."

// BlockedSentinel is returned as degraded output when a provider blocks a
// response and no backup model substitution is possible.
const BlockedSentinel = "[response blocked by provider safety filters]"

// Descriptor identifies the concrete model an invocation targets.
type Descriptor struct {
	Provider string
	Model    string
}

// Client executes single prompts against concrete provider models through
// a middleware pipeline of logging and retry around the core HTTP handler.
type Client struct {
	handler transport.Handler
	cfg     *configuration.Config
	logger  *slog.Logger
}

// NewClient builds a client from configuration. It is a hard error when no
// provider has credentials; a single missing credential only removes that
// provider from routing.
func NewClient(cfg *configuration.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configured := make(map[string]configuration.ProviderConfig)
	for _, name := range cfg.ConfiguredProviders() {
		configured[name] = cfg.Providers[name]
	}
	if len(configured) == 0 {
		return nil, llmerrors.ErrNoProviders
	}

	router, err := providers.NewRouter(configured)
	if err != nil {
		return nil, err
	}

	retryMW, err := retry.NewMiddleware(cfg.Retry)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "llm")
	core := transport.NewHTTPHandler(&http.Client{Timeout: cfg.HTTPTimeout}, router)
	handler := transport.Chain(core,
		NewLoggingMiddleware(logger),
		retryMW,
	)

	return &Client{handler: handler, cfg: cfg, logger: logger}, nil
}

// Configured reports whether a provider has credentials and can be routed to.
func (c *Client) Configured(provider string) bool {
	return c.cfg.Configured(provider)
}

// Invoke executes one prompt against one concrete model. Safety-blocked
// responses trigger exactly one same-provider backup model substitution
// when one is configured; otherwise the sentinel text is returned as a
// degraded response rather than an error.
func (c *Client) Invoke(ctx context.Context, prompt string, d Descriptor) (*transport.Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, llmerrors.ErrEmptyPrompt
	}

	resp, err := c.invokeOnce(ctx, prompt, d)
	if err == nil {
		return resp, nil
	}
	if !llmerrors.IsContentFiltered(err) {
		return nil, err
	}

	backup := c.cfg.Providers[d.Provider].BackupModel
	if backup != "" && backup != d.Model {
		c.logger.Warn("response blocked, substituting backup model",
			"provider", d.Provider,
			"model", d.Model,
			"backup_model", backup)
		resp, backupErr := c.invokeOnce(ctx, prompt, Descriptor{Provider: d.Provider, Model: backup})
		if backupErr == nil {
			resp.Degraded = true
			return resp, nil
		}
		err = backupErr
		if !llmerrors.IsContentFiltered(err) {
			return nil, err
		}
	}

	c.logger.Warn("response blocked with no usable backup, returning sentinel",
		"provider", d.Provider,
		"model", d.Model)
	return &transport.Response{
		Content:      BlockedSentinel,
		FinishReason: transport.FinishContentFilter,
		Degraded:     true,
	}, nil
}

func (c *Client) invokeOnce(ctx context.Context, prompt string, d Descriptor) (*transport.Response, error) {
	pcfg, ok := c.cfg.Providers[d.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, d.Provider)
	}

	req := &transport.Request{
		Provider:       d.Provider,
		Model:          d.Model,
		Prompt:         prompt,
		MaxTokens:      c.cfg.Generation.MaxTokens,
		Temperature:    c.cfg.Generation.Temperature,
		Timeout:        pcfg.Timeout,
		IdempotencyKey: uuid.New().String(),
	}
	if d.Provider == configuration.ProviderGemini {
		req.SystemPrompt = complianceContext
		req.SafetyThreshold = pcfg.SafetyThreshold
	}

	resp, err := c.handler.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("%w: %s returned blank content", llmerrors.ErrEmptyResponse, d.Provider)
	}
	return resp, nil
}

// Transient reports whether an invocation error should cool down the model
// and advance the fallback chain without abandoning the whole run.
func Transient(err error) bool {
	return llmerrors.IsRetryableError(err) || errors.Is(err, context.DeadlineExceeded)
}
