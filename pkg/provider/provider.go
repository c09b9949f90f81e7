// Package provider defines the narrow, externally-implemented ports the
// core depends on for text embedding and text generation. Callers supply
// their own adapters (local model, remote API, whatever); the core only
// ever sees these interfaces.
package provider

import "context"

// Embedder turns text into fixed-length vectors.
type Embedder interface {
	// Embed converts a single text into a vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts into vectors in one call.
	// Implementations that have no native batch API can embed
	// DefaultEmbedBatch's behavior by delegating to it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the length of vectors this embedder produces.
	Dimension() int

	// ProviderName identifies the embedding model/backend, for logging.
	ProviderName() string
}

// LLM generates and summarizes text.
type LLM interface {
	// Generate produces a completion for prompt, up to maxTokens.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)

	// GenerateWithParams is Generate with sampling control.
	GenerateWithParams(ctx context.Context, prompt string, maxTokens int, temperature, topP float32) (string, error)

	// Summarize condenses text. Implementations with no dedicated
	// summarization endpoint can delegate to DefaultSummarize.
	Summarize(ctx context.Context, text string) (string, error)
}
