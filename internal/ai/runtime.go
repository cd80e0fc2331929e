package ai

import "context"

// Runtime is a minimal interface implemented by AI backends/runtimes
// such as OpenAI, OpenRouter and local runtimes (e.g., Ollama).
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderEino       = "eino"
)
