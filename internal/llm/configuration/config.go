// Package configuration holds the settings for the clause judgment pipeline:
// provider credentials and endpoints, retry and pacing policy, batching
// budgets, and cooldown duration.
package configuration

import (
	"errors"
	"fmt"
	"time"
)

// Configuration validation errors.
var (
	errTokenBudgetInvalid   = errors.New("token budget must be greater than 0")
	errCharsPerTokenInvalid = errors.New("chars per token must be greater than 0")
	errSafetyMarginInvalid  = errors.New("safety margin must be in (0, 1]")
	errMaxAttemptsInvalid   = errors.New("max attempts must be greater than 0")
	errIntervalInvalid      = errors.New("initial interval must be greater than 0")
	errMaxIntervalInvalid   = errors.New("max interval must be >= initial interval")
	errMultiplierInvalid    = errors.New("multiplier must be >= 1.0")
	errWorkerCapInvalid     = errors.New("worker cap must be greater than 0")
	errCooldownInvalid      = errors.New("cooldown must be greater than 0")
)

// Config holds the complete configuration for the judgment pipeline.
type Config struct {
	// HTTPTimeout bounds the shared HTTP client; per-call deadlines come
	// from each provider's Timeout.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Providers maps provider name to its configuration. A provider whose
	// API key resolves empty is silently excluded from candidate chains.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Retry controls same-model retry behavior.
	Retry RetryConfig `yaml:"retry"`

	// Batch controls how clauses are grouped into prompts.
	Batch BatchConfig `yaml:"batch"`

	// Pipeline controls pacing and the optional parallel mode.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Generation parameters sent with every prompt.
	Generation GenerationConfig `yaml:"generation"`

	// Cooldown is how long a failed model is excluded from selection.
	Cooldown time.Duration `yaml:"cooldown"`

	// Chain names the fallback chain preset (standard, quality, speed,
	// gemini-only).
	Chain string `yaml:"chain"`
}

// ProviderConfig holds per-provider endpoints, credentials, and behavior.
type ProviderConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	APIKey    string        `yaml:"-"` // Sensitive, resolved from env only
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`

	// BackupModel, when set, is substituted exactly once after a
	// content-filter block on this provider's primary candidate.
	BackupModel string `yaml:"backup_model"`

	// SafetyThreshold is the harm-category threshold sent to providers
	// that accept a safety-filter policy (Gemini).
	SafetyThreshold string `yaml:"safety_threshold"`

	Headers map[string]string `yaml:"headers"`
}

// RetryConfig is the same-model retry policy: capped exponential backoff,
// optionally jittered, applied only to transient failures.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`     // Total attempts per model (1 = no retry)
	InitialInterval time.Duration `yaml:"initial_interval"` // Starting backoff duration
	MaxInterval     time.Duration `yaml:"max_interval"`     // Backoff ceiling
	Multiplier      float64       `yaml:"multiplier"`       // Exponential backoff multiplier
	UseJitter       bool          `yaml:"use_jitter"`       // Enable full jitter randomization
}

// BatchConfig derives the character budget for one prompt batch.
// The character heuristic (1 token ~= CharsPerToken characters, scaled by
// SafetyMargin for prompt overhead) is deliberate; exact token counting is
// out of scope.
type BatchConfig struct {
	TokenBudget   int     `yaml:"token_budget"`
	CharsPerToken float64 `yaml:"chars_per_token"`
	SafetyMargin  float64 `yaml:"safety_margin"`

	// PreviewLen bounds the clause text shown to the model. The stored
	// clause text is never truncated.
	PreviewLen int `yaml:"preview_len"`
}

// CharLimit returns the per-batch character budget.
func (b BatchConfig) CharLimit() int {
	return int(float64(b.TokenBudget) * b.CharsPerToken * b.SafetyMargin)
}

// PipelineConfig controls inter-batch pacing and the parallel mode.
type PipelineConfig struct {
	// InterBatchDelay is the fixed pacing delay between sequential batches.
	InterBatchDelay time.Duration `yaml:"inter_batch_delay"`

	// Parallel fans batches out across a bounded worker pool.
	Parallel bool `yaml:"parallel"`

	// Workers is the requested pool size; capped at WorkerCap regardless.
	Workers   int `yaml:"workers"`
	WorkerCap int `yaml:"worker_cap"`
}

// GenerationConfig holds the sampling parameters sent to every model.
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// ConfiguredProviders returns the names of providers with a resolved API
// key, in no particular order.
func (c *Config) ConfiguredProviders() []string {
	var names []string
	for name, pc := range c.Providers {
		if pc.APIKey != "" {
			names = append(names, name)
		}
	}
	return names
}

// Configured reports whether the named provider has credentials.
func (c *Config) Configured(provider string) bool {
	pc, ok := c.Providers[provider]
	return ok && pc.APIKey != ""
}

// Validate checks structural configuration constraints. Credential presence
// is checked separately at client construction so that a single missing key
// degrades to a shorter chain instead of failing the run.
func (c *Config) Validate() error {
	if c.Batch.TokenBudget <= 0 {
		return fmt.Errorf("%w, got %d", errTokenBudgetInvalid, c.Batch.TokenBudget)
	}
	if c.Batch.CharsPerToken <= 0 {
		return fmt.Errorf("%w, got %f", errCharsPerTokenInvalid, c.Batch.CharsPerToken)
	}
	if c.Batch.SafetyMargin <= 0 || c.Batch.SafetyMargin > 1 {
		return fmt.Errorf("%w, got %f", errSafetyMarginInvalid, c.Batch.SafetyMargin)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("%w, got %d", errMaxAttemptsInvalid, c.Retry.MaxAttempts)
	}
	if c.Retry.InitialInterval <= 0 {
		return fmt.Errorf("%w, got %v", errIntervalInvalid, c.Retry.InitialInterval)
	}
	if c.Retry.MaxInterval < c.Retry.InitialInterval {
		return fmt.Errorf("%w, max: %v, initial: %v",
			errMaxIntervalInvalid, c.Retry.MaxInterval, c.Retry.InitialInterval)
	}
	if c.Retry.Multiplier < 1.0 {
		return fmt.Errorf("%w, got %f", errMultiplierInvalid, c.Retry.Multiplier)
	}
	if c.Pipeline.WorkerCap <= 0 {
		return fmt.Errorf("%w, got %d", errWorkerCapInvalid, c.Pipeline.WorkerCap)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("%w, got %v", errCooldownInvalid, c.Cooldown)
	}
	return nil
}
