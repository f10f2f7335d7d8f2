package configuration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 19200, cfg.Batch.CharLimit())
	assert.Equal(t, "standard", cfg.Chain)
	assert.Contains(t, cfg.Providers, ProviderGroq)
	assert.Contains(t, cfg.Providers, ProviderGemini)
	assert.Equal(t, DefaultGeminiBackupModel, cfg.Providers[ProviderGemini].BackupModel)
	assert.Equal(t, SafetyThresholdNone, cfg.Providers[ProviderGemini].SafetyThreshold)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero token budget", func(c *Config) { c.Batch.TokenBudget = 0 }},
		{"negative chars per token", func(c *Config) { c.Batch.CharsPerToken = -1 }},
		{"safety margin above one", func(c *Config) { c.Batch.SafetyMargin = 1.5 }},
		{"zero max attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"zero initial interval", func(c *Config) { c.Retry.InitialInterval = 0 }},
		{"max interval below initial", func(c *Config) { c.Retry.MaxInterval = c.Retry.InitialInterval / 2 }},
		{"multiplier below one", func(c *Config) { c.Retry.Multiplier = 0.5 }},
		{"zero worker cap", func(c *Config) { c.Pipeline.WorkerCap = 0 }},
		{"zero cooldown", func(c *Config) { c.Cooldown = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfiguredProviders(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.ConfiguredProviders())
	assert.False(t, cfg.Configured(ProviderGroq))

	pc := cfg.Providers[ProviderGroq]
	pc.APIKey = "gsk_test"
	cfg.Providers[ProviderGroq] = pc

	assert.Equal(t, []string{ProviderGroq}, cfg.ConfiguredProviders())
	assert.True(t, cfg.Configured(ProviderGroq))
	assert.False(t, cfg.Configured(ProviderGemini))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv(GroqAPIKeyEnv, "gsk_from_env")
	t.Setenv(GeminiAPIKeyEnv, "")
	t.Setenv("LLM_MAX_TOKENS", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gsk_from_env", cfg.Providers[ProviderGroq].APIKey)
	assert.False(t, cfg.Configured(ProviderGemini))
	assert.Equal(t, DefaultTokenBudget, cfg.Batch.TokenBudget)
}

func TestLoadTokenBudgetOverride(t *testing.T) {
	t.Setenv(GroqAPIKeyEnv, "gsk_from_env")
	t.Setenv("LLM_MAX_TOKENS", "2500")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2500, cfg.Batch.TokenBudget)

	t.Setenv("LLM_MAX_TOKENS", "not-a-number")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadYAMLOverlay(t *testing.T) {
	t.Setenv(GroqAPIKeyEnv, "gsk_from_env")
	t.Setenv("LLM_MAX_TOKENS", "")

	path := t.TempDir() + "/config.yaml"
	yaml := `
chain: speed
batch:
  token_budget: 3000
  chars_per_token: 4
  safety_margin: 0.8
  preview_len: 500
pipeline:
  parallel: true
  workers: 5
  worker_cap: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "speed", cfg.Chain)
	assert.Equal(t, 3000, cfg.Batch.TokenBudget)
	assert.Equal(t, 500, cfg.Batch.PreviewLen)
	assert.True(t, cfg.Pipeline.Parallel)
	assert.Equal(t, 5, cfg.Pipeline.Workers)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultMaxAttempts, cfg.Retry.MaxAttempts)
}
