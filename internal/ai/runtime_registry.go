package ai

import (
	"fmt"
	"sort"
	"time"
)

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) (Runtime, error)

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	// Hosted providers
	APIKey  string
	BaseURL string
	Model   string
	// Ollama
	Host string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// Providers lists registered provider names.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NeedsAPIKey reports whether the provider requires a credential.
func NeedsAPIKey(provider string) bool {
	return provider != ProviderOllama
}

// GetRuntime creates a Runtime for the given provider.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, Providers())
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	return f(cfg)
}

func init() {
	RegisterRuntime(ProviderOpenAI, func(c RuntimeConfig) (Runtime, error) {
		return NewClient(c.APIKey, c.BaseURL, c.HTTPTimeout), nil
	})
	RegisterRuntime(ProviderOpenRouter, func(c RuntimeConfig) (Runtime, error) {
		cl := NewOpenRouterClient(c.APIKey, c.HTTPTimeout)
		if c.BaseURL != "" {
			cl.baseURL = c.BaseURL
		}
		return cl, nil
	})
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) (Runtime, error) {
		return NewOllamaClient(c.Host, c.HTTPTimeout), nil
	})
	RegisterRuntime(ProviderEino, func(c RuntimeConfig) (Runtime, error) {
		rt, err := NewEinoRuntime(c)
		if err != nil {
			return nil, err
		}
		return rt, nil
	})
}
