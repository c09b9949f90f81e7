// Package consolidator summarizes one HiRAG layer's nodes into the next
// layer up, growing the memory hierarchy monotonically.
package consolidator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/synapse-mem/synapse-go/pkg/core"
	"github.com/synapse-mem/synapse-go/pkg/provider"
)

// DefaultThreshold is the node count at a layer that triggers consolidation.
const DefaultThreshold = 5

// maxConsolidateAllLayer bounds consolidate_all's upward walk, matching the
// core's layer invariant (layer <= core.MaxLayer).
const maxConsolidateAllLayer = core.MaxLayer

// maxConcurrentEdges bounds the fan-out Consolidator uses when recording
// summarizes edges for a freshly created summary node.
const maxConcurrentEdges = 8

// Consolidator summarizes same-layer nodes into the layer above, once a
// layer holds at least Threshold nodes. ConsolidateLayer is safe for
// concurrent use: overlapping calls on the same layer serialize so a given
// set of source nodes is never double-summarized by a single call.
type Consolidator struct {
	store    core.Store
	llm      provider.LLM
	embedder provider.Embedder
	logger   core.Logger

	threshold int
	sem       *semaphore.Weighted
}

// New builds a Consolidator wired to store and providers, using
// DefaultThreshold.
func New(store core.Store, llm provider.LLM, embedder provider.Embedder) *Consolidator {
	return &Consolidator{
		store:     store,
		llm:       llm,
		embedder:  embedder,
		logger:    core.NopLogger(),
		threshold: DefaultThreshold,
		sem:       semaphore.NewWeighted(1),
	}
}

// WithThreshold returns a copy of c with a custom consolidation threshold.
func (c *Consolidator) WithThreshold(threshold int) *Consolidator {
	clone := *c
	clone.threshold = threshold
	return &clone
}

// WithLogger returns a copy of c using the given logger.
func (c *Consolidator) WithLogger(logger core.Logger) *Consolidator {
	clone := *c
	clone.logger = logger
	return &clone
}

// ConsolidateLayer summarizes every node at layer into a single Layer+1
// summary node, linked to each source node by a "summarizes" edge. It
// returns the new node's id, or nil if layer holds fewer than Threshold
// nodes.
//
// Consolidation never deletes the source nodes; re-running ConsolidateLayer
// while the layer still meets the threshold creates additional summary
// nodes by design — the hierarchy amortizes over time rather than
// deduplicating.
func (c *Consolidator) ConsolidateLayer(ctx context.Context, layer uint8) (*string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("consolidator: consolidate_layer: %w", err)
	}
	defer c.sem.Release(1)

	count, err := c.store.CountByLayer(ctx, layer)
	if err != nil {
		return nil, fmt.Errorf("consolidator: consolidate_layer: count_by_layer: %w", err)
	}
	if count < int64(c.threshold) {
		return nil, nil
	}

	nodes, err := c.store.GetByLayer(ctx, layer)
	if err != nil {
		return nil, fmt.Errorf("consolidator: consolidate_layer: get_by_layer: %w", err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	prompt := buildConsolidationPrompt(nodes)

	summary, err := c.llm.Generate(ctx, prompt, 500)
	if err != nil {
		return nil, fmt.Errorf("consolidator: consolidate_layer: generate: %w", err)
	}

	embedding, err := c.embedder.Embed(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("consolidator: consolidate_layer: embed: %w", err)
	}

	summaryNode := core.NewMemoryNode(summary).
		WithEmbedding(embedding).
		WithNamespace(core.DefaultNamespace).
		WithSource("consolidation").
		WithLayer(layer + 1)

	if _, err := c.store.StoreNode(ctx, summaryNode); err != nil {
		return nil, fmt.Errorf("consolidator: consolidate_layer: store: %w", err)
	}

	if err := c.linkSources(ctx, summaryNode.ID, nodes); err != nil {
		return nil, err
	}

	c.logger.Info("consolidated layer", "layer", layer, "sources", len(nodes), "summary_id", summaryNode.ID)
	id := summaryNode.ID
	return &id, nil
}

func (c *Consolidator) linkSources(ctx context.Context, summaryID string, nodes []core.MemoryNode) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEdges)
	for _, node := range nodes {
		node := node
		g.Go(func() error {
			if err := c.store.AddRelationship(gctx, summaryID, core.SummarizesRelation, node.ID); err != nil {
				return fmt.Errorf("consolidator: consolidate_layer: add_relationship: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// ConsolidateAll walks layers upward from 0, consolidating each as long as
// it meets the threshold. It stops as soon as layer 0 fails to
// consolidate; once it has moved past layer 0, it keeps trying subsequent
// layers up to maxConsolidateAllLayer before giving up. It returns the
// number of summary nodes created.
func (c *Consolidator) ConsolidateAll(ctx context.Context) (int, error) {
	created := 0
	var layer uint8

	for {
		id, err := c.ConsolidateLayer(ctx, layer)
		if err != nil {
			return created, err
		}
		if id != nil {
			created++
			layer++
			continue
		}

		if layer == 0 {
			break
		}
		if layer < maxConsolidateAllLayer {
			layer++
			continue
		}
		break
	}

	return created, nil
}

// buildConsolidationPrompt renders nodes as a numbered enumeration and
// wraps it in the summarization instruction the LLM expects.
func buildConsolidationPrompt(nodes []core.MemoryNode) string {
	var items strings.Builder
	for i, node := range nodes {
		if i > 0 {
			items.WriteByte('\n')
		}
		fmt.Fprintf(&items, "%d. %s", i+1, node.Content)
	}
	return fmt.Sprintf("Summarize the following %d items into a concise overview:\n\n%s", len(nodes), items.String())
}
