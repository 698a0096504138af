package constants

import "strings"

// Provider names a generative text backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

var allProviders = []Provider{ProviderGemini, ProviderOpenAI}

// CanonicalProvider maps user input and common aliases to a Provider.
func CanonicalProvider(input string) (Provider, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return ProviderGemini, false
	}
	synonyms := map[string]Provider{
		"google":    ProviderGemini,
		"genai":     ProviderGemini,
		"gpt":       ProviderOpenAI,
		"chatgpt":   ProviderOpenAI,
		"openai-v1": ProviderOpenAI,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}
	for _, p := range allProviders {
		if normalized == string(p) {
			return p, true
		}
	}
	return ProviderGemini, false
}

// LinkScope says whether a reference link belongs to a discipline or a topic.
type LinkScope string

const (
	ScopeDiscipline LinkScope = "discipline"
	ScopeTopic      LinkScope = "topic"
)

// ParseLinkScope accepts english and portuguese names.
func ParseLinkScope(input string) (LinkScope, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "discipline", "disciplina", "d":
		return ScopeDiscipline, true
	case "topic", "topico", "tópico", "t":
		return ScopeTopic, true
	}
	return "", false
}
