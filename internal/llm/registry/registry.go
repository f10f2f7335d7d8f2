// Package registry maintains the static model catalog and the mutable
// cooldown table. The catalog describes every model the fallback chains can
// reference; the cooldown table temporarily excludes models that recently
// failed so chains skip them without re-probing.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Model categories group catalog entries by intended use.
const (
	CategoryQuality  = "quality"
	CategoryBalanced = "balanced"
	CategoryFast     = "fast"
)

// Catalog model names. The groq entries use the OpenAI-compatible model
// identifiers; the gemini entries use generateContent model identifiers.
const (
	GroqQuality  = "llama-3.3-70b-versatile"
	GroqBalanced = "llama-3.1-70b-versatile"
	GroqFast     = "llama-3.1-8b-instant"

	GeminiPrimary = "gemini-2.5-flash"
	GeminiBackup  = "gemini-2.0-flash-exp"
	GeminiPro     = "gemini-2.5-pro"
	GeminiLite    = "gemini-2.5-flash-lite"
)

// ModelDescriptor is static metadata about one named model at one provider.
type ModelDescriptor struct {
	Provider        string
	Name            string
	Category        string
	ContextWindow   int
	RateLimitPerMin int
	// Priority orders candidates within a provider and category,
	// lowest first.
	Priority int
}

// Key returns the cooldown table key for this descriptor.
func (d ModelDescriptor) Key() string {
	return d.Provider + ":" + d.Name
}

func (d ModelDescriptor) String() string {
	return fmt.Sprintf("%s/%s", d.Provider, d.Name)
}

// defaultCatalog lists every model the chains reference. Priorities order
// models within a provider; context windows and rate limits are the
// published limits for each model family.
func defaultCatalog() []ModelDescriptor {
	return []ModelDescriptor{
		{Provider: "groq", Name: GroqQuality, Category: CategoryQuality, ContextWindow: 128_000, RateLimitPerMin: 30, Priority: 1},
		{Provider: "groq", Name: GroqBalanced, Category: CategoryBalanced, ContextWindow: 128_000, RateLimitPerMin: 30, Priority: 2},
		{Provider: "groq", Name: GroqFast, Category: CategoryFast, ContextWindow: 128_000, RateLimitPerMin: 30, Priority: 3},
		{Provider: "gemini", Name: GeminiPrimary, Category: CategoryBalanced, ContextWindow: 1_048_576, RateLimitPerMin: 10, Priority: 1},
		{Provider: "gemini", Name: GeminiPro, Category: CategoryQuality, ContextWindow: 1_048_576, RateLimitPerMin: 5, Priority: 2},
		{Provider: "gemini", Name: GeminiBackup, Category: CategoryBalanced, ContextWindow: 1_048_576, RateLimitPerMin: 10, Priority: 3},
		{Provider: "gemini", Name: GeminiLite, Category: CategoryFast, ContextWindow: 1_048_576, RateLimitPerMin: 15, Priority: 4},
	}
}

// Registry combines the static model catalog with a cooldown table of
// recently-failed models. Safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	catalog  []ModelDescriptor
	cooldown time.Duration
	failedAt map[string]time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// NewRegistry creates a registry over the default catalog. Models marked
// failed are excluded from AvailableModels until the cooldown elapses.
func NewRegistry(cooldown time.Duration) *Registry {
	return &Registry{
		catalog:  defaultCatalog(),
		cooldown: cooldown,
		failedAt: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Lookup returns the descriptor for the given provider and model name.
func (r *Registry) Lookup(provider, model string) (ModelDescriptor, bool) {
	for _, d := range r.catalog {
		if d.Provider == provider && d.Name == model {
			return d, true
		}
	}
	return ModelDescriptor{}, false
}

// AvailableModels returns the catalog entries for a provider, ordered by
// ascending priority, excluding models still in cooldown. An empty category
// matches all categories. Expired cooldown entries are evicted as a side
// effect.
func (r *Registry) AvailableModels(provider, category string) []ModelDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var out []ModelDescriptor
	for _, d := range r.catalog {
		if d.Provider != provider {
			continue
		}
		if category != "" && d.Category != category {
			continue
		}
		if r.coolingLocked(d.Key(), now) {
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// Available reports whether a specific model is selectable right now.
func (r *Registry) Available(provider, model string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.coolingLocked(provider+":"+model, r.now())
}

// coolingLocked reports whether key is still in cooldown, evicting the
// entry once the cooldown has elapsed. Caller holds r.mu.
func (r *Registry) coolingLocked(key string, now time.Time) bool {
	failed, ok := r.failedAt[key]
	if !ok {
		return false
	}
	if now.Sub(failed) >= r.cooldown {
		delete(r.failedAt, key)
		return false
	}
	return true
}

// CooldownRemaining returns how long until a model becomes selectable
// again, or zero when it is available now.
func (r *Registry) CooldownRemaining(provider, model string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	failed, ok := r.failedAt[provider+":"+model]
	if !ok {
		return 0
	}
	remaining := r.cooldown - r.now().Sub(failed)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarkFailed inserts or refreshes the cooldown entry for a model. Called by
// the fallback orchestrator after transient or permanent failures.
func (r *Registry) MarkFailed(provider, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedAt[provider+":"+model] = r.now()
}

// Reset clears the cooldown table.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedAt = make(map[string]time.Time)
}
