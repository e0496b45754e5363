// Package llm provides the model provider abstraction used for extraction:
// provider adapters, the ordered model fallback chain, and JSON response helpers.
package llm

import "strings"

// ProviderName identifies an LLM provider
type ProviderName string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is Google Gemini. It reads PDF attachments directly.
	ProviderGemini ProviderName = "gemini"
	// ProviderOpenAI is the OpenAI chat completions API (text only)
	ProviderOpenAI ProviderName = "openai"
	// ProviderOllama is a self-hosted model behind an OpenAI-compatible endpoint
	ProviderOllama ProviderName = "ollama"
)

// DefaultOllamaBaseURL is where a local Ollama serves its OpenAI-compatible API
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// Config is the immutable provider configuration supplied at construction.
type Config struct {
	Provider ProviderName
	APIKey   string
	BaseURL  string
	// Model overrides the provider's default first candidate
	Model string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return &Config{Provider: ProviderGemini}
}

// geminiFallbacks are tried after the configured model, most capable first.
var geminiFallbacks = []string{
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
}

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOllamaModel = "llama3.1"
)

// CandidateModels returns the ordered, de-duplicated candidate chain:
// the configured model first, then each fallback not already present.
// Blank entries are skipped.
func CandidateModels(configured string, fallbacks []string) []string {
	seen := make(map[string]bool, len(fallbacks)+1)
	out := make([]string, 0, len(fallbacks)+1)

	add := func(m string) {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		out = append(out, m)
	}

	add(configured)
	for _, m := range fallbacks {
		add(m)
	}
	return out
}

// ParseProviderName normalizes a provider selector. Unknown values are
// returned as-is so NewProvider can reject them.
func ParseProviderName(s string) ProviderName {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProviderGemini
	}
	return ProviderName(s)
}
