package synapse

import (
	"context"
	"fmt"

	"github.com/synapse-mem/synapse-go/pkg/core"
)

// Ingest pushes a user/AI interaction pair onto the buffer, for later
// metabolism.
func (s *System) Ingest(ctx context.Context, userInput, aiResponse string) error {
	interaction := core.NewInteraction(userInput, aiResponse)
	if err := s.buf.Push(ctx, interaction); err != nil {
		return fmt.Errorf("synapse: ingest: %w", err)
	}
	return nil
}

// Digest runs one metabolism pass, draining the buffer into a Layer-0
// summary node if it has reached the configured threshold. It returns how
// many interactions were processed.
func (s *System) Digest(ctx context.Context) (int, error) {
	if s.metabolism == nil {
		return 0, fmt.Errorf("synapse: digest: no providers configured (use WithProviders at Open)")
	}
	return s.metabolism.Digest(ctx)
}

// ConsolidateLayer summarizes layer's nodes into a single node one layer
// up, if the layer has reached the configured threshold.
func (s *System) ConsolidateLayer(ctx context.Context, layer uint8) (*string, error) {
	if s.consolidator == nil {
		return nil, fmt.Errorf("synapse: consolidate_layer: no providers configured (use WithProviders at Open)")
	}
	return s.consolidator.ConsolidateLayer(ctx, layer)
}

// ConsolidateAll walks layers upward, consolidating each as long as it
// meets the threshold, and returns how many summary nodes were created.
func (s *System) ConsolidateAll(ctx context.Context) (int, error) {
	if s.consolidator == nil {
		return 0, fmt.Errorf("synapse: consolidate_all: no providers configured (use WithProviders at Open)")
	}
	return s.consolidator.ConsolidateAll(ctx)
}

// Evaluate checks action against the registered ethical baseline.
func (s *System) Evaluate(action []float32) (float64, error) {
	if s.ethics == nil {
		return 0, fmt.Errorf("synapse: evaluate: no ethical baseline configured (use WithEthics at Open)")
	}
	return s.ethics.Evaluate(action)
}

// Search is a pass-through to the store's whole-population search.
func (s *System) Search(ctx context.Context, query []float32, k int) ([]core.ScoredNode, error) {
	return s.store.Search(ctx, query, k)
}

// SearchLayer is a pass-through to the store's layer-scoped search.
func (s *System) SearchLayer(ctx context.Context, query []float32, layer uint8, k int) ([]core.ScoredNode, error) {
	return s.store.SearchLayer(ctx, query, layer, k)
}

// SearchNamespace is a pass-through to the store's namespace-scoped search.
func (s *System) SearchNamespace(ctx context.Context, query []float32, namespace string, k int) ([]core.ScoredNode, error) {
	return s.store.SearchNamespace(ctx, query, namespace, k)
}
