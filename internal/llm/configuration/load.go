package configuration

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration: defaults, overlaid with an
// optional YAML file, with credentials and budget overrides resolved from
// the environment (a .env file is honored when present).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	for name, pc := range cfg.Providers {
		if pc.APIKeyEnv != "" {
			pc.APIKey = os.Getenv(pc.APIKeyEnv)
			cfg.Providers[name] = pc
		}
	}

	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		budget, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse LLM_MAX_TOKENS: %w", err)
		}
		cfg.Batch.TokenBudget = budget
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
