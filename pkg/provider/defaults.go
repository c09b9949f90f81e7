package provider

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentEmbeds bounds the fan-out DefaultEmbedBatch uses, so a large
// batch cannot open one goroutine (and one provider request) per text.
const maxConcurrentEmbeds = 8

// DefaultEmbedBatch is the batch-embedding behavior an Embedder gets "for
// free" when its backend exposes no native batch endpoint: it calls Embed
// concurrently, bounded to maxConcurrentEmbeds in flight, and returns the
// results in input order. The first error cancels the remaining calls.
func DefaultEmbedBatch(ctx context.Context, embedder Embedder, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbeds)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed_batch: item %d: %w", i, err)
			}
			results[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// defaultSummarizePromptTemplate mirrors the prompt an LLM port builds when
// summarization has no dedicated endpoint of its own.
const defaultSummarizePromptTemplate = "Summarize the following text concisely:\n\n%s\n\nSummary:"

// defaultSummarizeMaxTokens bounds the length of a default summarization.
const defaultSummarizeMaxTokens = 256

// DefaultSummarize is the summarization behavior an LLM gets "for free"
// when its backend exposes no dedicated summarization endpoint: it wraps
// text in a fixed instruction prompt and calls Generate.
func DefaultSummarize(ctx context.Context, llm LLM, text string) (string, error) {
	prompt := fmt.Sprintf(defaultSummarizePromptTemplate, text)
	return llm.Generate(ctx, prompt, defaultSummarizeMaxTokens)
}
