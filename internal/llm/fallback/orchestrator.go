// Package fallback walks an ordered candidate chain of (provider, model)
// pairs, skipping cooled-down or unconfigured entries, until one invocation
// succeeds or the chain is exhausted.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clauseline/clauseline/internal/llm"
	"github.com/clauseline/clauseline/internal/llm/registry"
	"github.com/clauseline/clauseline/internal/llm/transport"
)

// ErrChainExhausted reports that every candidate in the chain failed or was
// skipped. It wraps the last invocation error when one occurred.
var ErrChainExhausted = errors.New("all fallback candidates exhausted")

// Invoker executes one prompt against one concrete model. Satisfied by
// *llm.Client.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, d llm.Descriptor) (*transport.Response, error)
	Configured(provider string) bool
}

// Attempt records one candidate invocation for diagnostics.
type Attempt struct {
	Provider  string
	Model     string
	Succeeded bool
	Skipped   bool
	Err       error
}

// Result carries the successful completion and attempt metadata.
type Result struct {
	Text         string
	Provider     string
	Model        string
	Attempts     []Attempt
	FallbackUsed bool
	Degraded     bool
}

// Orchestrator tries chain candidates in order, marking failures in the
// registry cooldown table so later batches skip known-bad models.
type Orchestrator struct {
	invoker  Invoker
	registry *registry.Registry
	logger   *slog.Logger
}

// NewOrchestrator creates a fallback orchestrator over the given invoker
// and cooldown registry.
func NewOrchestrator(invoker Invoker, reg *registry.Registry) *Orchestrator {
	return &Orchestrator{
		invoker:  invoker,
		registry: reg,
		logger:   slog.Default().With("component", "fallback"),
	}
}

// Complete walks the chain until a candidate returns text. Unconfigured
// providers and cooled-down models are skipped without an invocation.
// Transient and permanent failures both cool the model down and advance
// the chain; a degraded (filter-blocked) response still counts as success.
func (o *Orchestrator) Complete(ctx context.Context, prompt string, chain []registry.Candidate) (*Result, error) {
	var attempts []Attempt
	var lastErr error

	for i, candidate := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !o.invoker.Configured(candidate.Provider) {
			o.logger.Debug("skipping unconfigured provider", "candidate", candidate.String())
			attempts = append(attempts, Attempt{
				Provider: candidate.Provider, Model: candidate.Model, Skipped: true,
			})
			continue
		}
		if !o.registry.Available(candidate.Provider, candidate.Model) {
			o.logger.Debug("skipping cooled-down model", "candidate", candidate.String())
			attempts = append(attempts, Attempt{
				Provider: candidate.Provider, Model: candidate.Model, Skipped: true,
			})
			continue
		}

		resp, err := o.invoker.Invoke(ctx, prompt, llm.Descriptor{
			Provider: candidate.Provider,
			Model:    candidate.Model,
		})
		if err != nil {
			lastErr = err
			o.registry.MarkFailed(candidate.Provider, candidate.Model)
			o.logger.Warn("candidate failed, advancing chain",
				"candidate", candidate.String(),
				"transient", llm.Transient(err),
				"remaining", len(chain)-i-1,
				"error", err)
			attempts = append(attempts, Attempt{
				Provider: candidate.Provider, Model: candidate.Model, Err: err,
			})
			continue
		}

		attempts = append(attempts, Attempt{
			Provider: candidate.Provider, Model: candidate.Model, Succeeded: true,
		})
		return &Result{
			Text:         resp.Content,
			Provider:     candidate.Provider,
			Model:        candidate.Model,
			Attempts:     attempts,
			FallbackUsed: invocationsBefore(attempts) > 0,
			Degraded:     resp.Degraded,
		}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainExhausted, lastErr)
	}
	return nil, ErrChainExhausted
}

// invocationsBefore counts failed invocations preceding the final attempt.
// Skipped candidates do not count as fallback.
func invocationsBefore(attempts []Attempt) int {
	n := 0
	for _, a := range attempts[:len(attempts)-1] {
		if !a.Skipped {
			n++
		}
	}
	return n
}
