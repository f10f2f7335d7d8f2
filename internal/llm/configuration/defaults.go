package configuration

import "time"

// Provider identifiers. These match the keys of Config.Providers and the
// provider tags in the model catalog.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Default endpoints.
const (
	DefaultGroqEndpoint   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
)

// Credential environment variables.
const (
	GroqAPIKeyEnv   = "GROQ_API_KEY"
	GeminiAPIKeyEnv = "GEMINI_API_KEY"
)

// Timeout and retry constants. Retries are kept low: a failed model is
// cooled down and the fallback chain advances instead of hammering it.
const (
	DefaultHTTPTimeout     = 60 * time.Second
	DefaultGroqTimeout     = 30 * time.Second
	DefaultGeminiTimeout   = 45 * time.Second
	DefaultMaxAttempts     = 2
	DefaultInitialInterval = 1 * time.Second
	DefaultMaxInterval     = 3 * time.Second
	DefaultMultiplier      = 2.0
)

// Batching constants. One token is estimated at four characters, scaled by
// a 0.8 margin for instruction overhead.
const (
	DefaultTokenBudget   = 6000
	DefaultCharsPerToken = 4.0
	DefaultSafetyMargin  = 0.8
	DefaultPreviewLen    = 900
)

// Pipeline constants.
const (
	DefaultInterBatchDelay = 2 * time.Second
	DefaultWorkers         = 3
	DefaultWorkerCap       = 10
	DefaultCooldown        = 10 * time.Minute
)

// Generation constants. Temperature is kept low for consistent compliance
// judgments.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 4000
)

// DefaultGeminiBackupModel is substituted once after a safety-filter block.
const DefaultGeminiBackupModel = "gemini-2.0-flash-exp"

// SafetyThresholdNone disables Gemini harm-category blocking; compliance
// text routinely trips the default filters.
const SafetyThresholdNone = "BLOCK_NONE"

// DefaultConfig returns the production configuration. API keys are not
// resolved here; see Load.
func DefaultConfig() *Config {
	return &Config{
		HTTPTimeout: DefaultHTTPTimeout,
		Providers: map[string]ProviderConfig{
			ProviderGroq: {
				Endpoint:  DefaultGroqEndpoint,
				APIKeyEnv: GroqAPIKeyEnv,
				Timeout:   DefaultGroqTimeout,
			},
			ProviderGemini: {
				Endpoint:        DefaultGeminiEndpoint,
				APIKeyEnv:       GeminiAPIKeyEnv,
				Timeout:         DefaultGeminiTimeout,
				BackupModel:     DefaultGeminiBackupModel,
				SafetyThreshold: SafetyThresholdNone,
			},
		},
		Retry: RetryConfig{
			MaxAttempts:     DefaultMaxAttempts,
			InitialInterval: DefaultInitialInterval,
			MaxInterval:     DefaultMaxInterval,
			Multiplier:      DefaultMultiplier,
			UseJitter:       true,
		},
		Batch: BatchConfig{
			TokenBudget:   DefaultTokenBudget,
			CharsPerToken: DefaultCharsPerToken,
			SafetyMargin:  DefaultSafetyMargin,
			PreviewLen:    DefaultPreviewLen,
		},
		Pipeline: PipelineConfig{
			InterBatchDelay: DefaultInterBatchDelay,
			Workers:         DefaultWorkers,
			WorkerCap:       DefaultWorkerCap,
		},
		Generation: GenerationConfig{
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Cooldown: DefaultCooldown,
		Chain:    "standard",
	}
}
