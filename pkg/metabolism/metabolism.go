// Package metabolism digests the short-term interaction buffer into
// long-term Layer-0 memory nodes.
package metabolism

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/synapse-mem/synapse-go/pkg/buffer"
	"github.com/synapse-mem/synapse-go/pkg/core"
	"github.com/synapse-mem/synapse-go/pkg/provider"
)

// DefaultThreshold is the interaction count that triggers a digest.
const DefaultThreshold = 10

// Metabolism drains the buffer into the store once it holds at least
// Threshold interactions, summarizing and embedding the batch along the
// way. Digest is safe for concurrent use: overlapping calls serialize so a
// batch is drained by exactly one of them.
type Metabolism struct {
	buf      buffer.Buffer
	store    core.Store
	llm      provider.LLM
	embedder provider.Embedder
	logger   core.Logger

	threshold int
	sem       *semaphore.Weighted
}

// New builds a Metabolism wired to the given buffer, store, and providers,
// using DefaultThreshold.
func New(buf buffer.Buffer, store core.Store, llm provider.LLM, embedder provider.Embedder) *Metabolism {
	return &Metabolism{
		buf:       buf,
		store:     store,
		llm:       llm,
		embedder:  embedder,
		logger:    core.NopLogger(),
		threshold: DefaultThreshold,
		sem:       semaphore.NewWeighted(1),
	}
}

// WithThreshold returns a copy of m with a custom digest threshold.
func (m *Metabolism) WithThreshold(threshold int) *Metabolism {
	clone := *m
	clone.threshold = threshold
	return &clone
}

// WithLogger returns a copy of m using the given logger.
func (m *Metabolism) WithLogger(logger core.Logger) *Metabolism {
	clone := *m
	clone.logger = logger
	return &clone
}

// Digest drains up to Threshold interactions from the buffer into a single
// Layer-0 Summary node, and returns how many interactions it processed.
//
// If the buffer holds fewer than Threshold interactions, Digest is a no-op
// that returns 0. If the LLM or Embedder call fails, the popped batch is
// lost (at-most-once downstream) per the specification's failure
// semantics; Digest does not re-push on failure.
func (m *Metabolism) Digest(ctx context.Context) (int, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return 0, fmt.Errorf("metabolism: digest: %w", err)
	}
	defer m.sem.Release(1)

	count, err := m.buf.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("metabolism: digest: read buffer length: %w", err)
	}
	if count < m.threshold {
		return 0, nil
	}

	batch, err := m.buf.PopBatch(ctx, m.threshold)
	if err != nil {
		return 0, fmt.Errorf("metabolism: digest: pop batch: %w", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	transcript := buildTranscript(batch)

	summary, err := m.llm.Summarize(ctx, transcript)
	if err != nil {
		return 0, fmt.Errorf("metabolism: digest: summarize: %w", err)
	}

	embedding, err := m.embedder.Embed(ctx, summary)
	if err != nil {
		return 0, fmt.Errorf("metabolism: digest: embed: %w", err)
	}

	node := core.NewMemoryNode(summary).
		WithEmbedding(embedding).
		WithNamespace(core.DefaultNamespace).
		WithSource("metabolism").
		WithLayer(0)
	node.NodeType = core.NodeTypeSummary

	if _, err := m.store.StoreNode(ctx, node); err != nil {
		return 0, fmt.Errorf("metabolism: digest: store node: %w", err)
	}

	m.logger.Info("digest complete", "processed", len(batch), "node_id", node.ID)
	return len(batch), nil
}

// buildTranscript renders a batch of interactions as alternating User/AI
// lines, in popped (insertion) order, exactly as the LLM expects.
func buildTranscript(batch []core.Interaction) string {
	var b strings.Builder
	for _, interaction := range batch {
		fmt.Fprintf(&b, "User: %s\nAI: %s\n", interaction.UserInput, interaction.AIResponse)
	}
	return b.String()
}
