package registry

import "fmt"

// Chain preset names, selectable from configuration and the CLI.
const (
	ChainStandard   = "standard"
	ChainQuality    = "quality"
	ChainSpeed      = "speed"
	ChainGeminiOnly = "gemini-only"
)

// Candidate is one (provider, model) pair in a fallback chain.
type Candidate struct {
	Provider string
	Model    string
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s/%s", c.Provider, c.Model)
}

// StandardChain is the default fallback order: groq quality, then the
// gemini primary model, then the gemini backup.
func StandardChain() []Candidate {
	return []Candidate{
		{Provider: "groq", Model: GroqQuality},
		{Provider: "gemini", Model: GeminiPrimary},
		{Provider: "gemini", Model: GeminiBackup},
	}
}

// QualityChain prefers the highest-quality model at each provider.
func QualityChain() []Candidate {
	return []Candidate{
		{Provider: "groq", Model: GroqQuality},
		{Provider: "gemini", Model: GeminiPro},
	}
}

// SpeedChain uses only the fast model tier.
func SpeedChain() []Candidate {
	return []Candidate{
		{Provider: "groq", Model: GroqFast},
		{Provider: "gemini", Model: GeminiLite},
	}
}

// GeminiOnlyChain is used when groq is unavailable or unconfigured.
func GeminiOnlyChain() []Candidate {
	return []Candidate{
		{Provider: "gemini", Model: GeminiPrimary},
		{Provider: "gemini", Model: GeminiBackup},
		{Provider: "gemini", Model: GeminiLite},
	}
}

// ChainByName resolves a preset name to its candidate list.
func ChainByName(name string) ([]Candidate, error) {
	switch name {
	case ChainStandard, "":
		return StandardChain(), nil
	case ChainQuality:
		return QualityChain(), nil
	case ChainSpeed:
		return SpeedChain(), nil
	case ChainGeminiOnly:
		return GeminiOnlyChain(), nil
	default:
		return nil, fmt.Errorf("unknown fallback chain %q", name)
	}
}

// CategoryChain widens a chain to every available model of a category
// across both providers, groq first. Cooled-down models are excluded at
// build time; the orchestrator re-checks availability per attempt.
func (r *Registry) CategoryChain(category string) []Candidate {
	var out []Candidate
	for _, provider := range []string{"groq", "gemini"} {
		for _, d := range r.AvailableModels(provider, category) {
			out = append(out, Candidate{Provider: d.Provider, Model: d.Name})
		}
	}
	return out
}
