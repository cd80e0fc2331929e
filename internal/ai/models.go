package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Model metadata and simple pricing helpers for UX warnings.
// Prices are illustrative and should be verified against provider docs.

type ModelInfo struct {
	Name          string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	"gpt-4o": {
		Name:          "gpt-4o",
		ContextTokens: 128000,
		InputPerK:     0.0025,
		OutputPerK:    0.01,
	},
	"gpt-4o-mini": {
		Name:          "gpt-4o-mini",
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"gpt-4.1-mini": {
		Name:          "gpt-4.1-mini",
		ContextTokens: 1047576,
		InputPerK:     0.0004,
		OutputPerK:    0.0016,
	},
	// OpenRouter names
	"openai/gpt-4o": {
		Name:          "openai/gpt-4o",
		ContextTokens: 128000,
		InputPerK:     0.0025,
		OutputPerK:    0.01,
	},
	"openai/gpt-4o-mini": {
		Name:          "openai/gpt-4o-mini",
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"anthropic/claude-3.5-sonnet": {
		Name:          "anthropic/claude-3.5-sonnet",
		ContextTokens: 200000,
		InputPerK:     0.003,
		OutputPerK:    0.015,
	},
	// Common local (Ollama) tags
	"llama3:latest": {
		Name:          "llama3:latest",
		ContextTokens: 8192,
	},
	"llama3.1:8b-instruct": {
		Name:          "llama3.1:8b-instruct",
		ContextTokens: 8192,
	},
	"mistral:7b-instruct": {
		Name:          "mistral:7b-instruct",
		ContextTokens: 8192,
	},
	"phi3:mini-4k-instruct": {
		Name:          "phi3:mini-4k-instruct",
		ContextTokens: 4096,
	},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// CheckContext returns an error when promptTokens plus the reserved output
// budget exceed the model's known context window. Unknown models pass.
func CheckContext(model string, promptTokens, maxTokens int) error {
	mi, ok := LookupModel(model)
	if !ok || mi.ContextTokens <= 0 {
		return nil
	}
	if promptTokens+maxTokens > mi.ContextTokens {
		return fmt.Errorf("prompt (~%d tokens) plus max_tokens %d exceeds %s context window of %d", promptTokens, maxTokens, model, mi.ContextTokens)
	}
	return nil
}

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example JSON entry:
// { "gpt-4o-mini": {"Name":"gpt-4o-mini","ContextTokens":128000,"InputPerK":0.00015,"OutputPerK":0.0006} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m map[string]ModelInfo
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	for k, v := range m {
		if v.Name == "" {
			v.Name = k
			m[k] = v
		}
	}
	return m, nil
}

// SaveCatalogJSON writes a catalog as indented JSON with sorted keys.
func SaveCatalogJSON(path string, m map[string]ModelInfo) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// OverrideCatalog replaces the in-memory catalog entirely.
func OverrideCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	models = m
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	for k, v := range m {
		models[k] = v
	}
}

// Catalog returns a shallow copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}

// ModelNames returns catalog keys in sorted order.
func ModelNames() []string {
	out := make([]string, 0, len(models))
	for k := range models {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
