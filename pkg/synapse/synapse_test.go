package synapse

import (
	"context"
	"path/filepath"
	"testing"
)

type stubLLM struct{}

func (stubLLM) Generate(context.Context, string, int) (string, error) { return "SUMMARY", nil }
func (stubLLM) GenerateWithParams(context.Context, string, int, float32, float32) (string, error) {
	return "SUMMARY", nil
}
func (stubLLM) Summarize(context.Context, string) (string, error) { return "SUMMARY", nil }

type stubEmbedder struct{ vector []float32 }

func (s stubEmbedder) Embed(context.Context, string) ([]float32, error) { return s.vector, nil }
func (s stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}
func (s stubEmbedder) Dimension() int       { return len(s.vector) }
func (s stubEmbedder) ProviderName() string { return "stub" }

func newTestSystem(t *testing.T, opts ...Option) *System {
	t.Helper()
	dir := t.TempDir()
	config := Config{
		StorePath:              filepath.Join(dir, "store.db"),
		BufferPath:             filepath.Join(dir, "buffer.db"),
		Dimension:              3,
		DigestThreshold:        3,
		ConsolidationThreshold: 2,
	}
	sys, err := Open(context.Background(), config, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { sys.Close() })
	return sys
}

func TestIngestAndDigestEndToEnd(t *testing.T) {
	sys := newTestSystem(t, WithProviders(stubEmbedder{vector: []float32{0.1, 0.2, 0.3}}, stubLLM{}))
	ctx := context.Background()

	pairs := [][2]string{{"Q0", "A0"}, {"Q1", "A1"}, {"Q2", "A2"}}
	for _, p := range pairs {
		if err := sys.Ingest(ctx, p[0], p[1]); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	processed, err := sys.Digest(ctx)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if processed != 3 {
		t.Fatalf("Digest processed %d, want 3", processed)
	}

	results, err := sys.SearchLayer(ctx, []float32{0.1, 0.2, 0.3}, 0, 10)
	if err != nil {
		t.Fatalf("SearchLayer: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("SearchLayer returned %d results, want 1", len(results))
	}
	if results[0].Node.Content != "SUMMARY" {
		t.Errorf("Content = %q, want SUMMARY", results[0].Node.Content)
	}
}

func TestDigestWithoutProvidersErrors(t *testing.T) {
	sys := newTestSystem(t)
	if _, err := sys.Digest(context.Background()); err == nil {
		t.Fatal("Digest without providers: expected error, got nil")
	}
}

func TestConsolidateAllEndToEnd(t *testing.T) {
	sys := newTestSystem(t, WithProviders(stubEmbedder{vector: []float32{0.1, 0.2, 0.3}}, stubLLM{}))
	ctx := context.Background()

	for _, p := range [][2]string{{"Q0", "A0"}, {"Q1", "A1"}, {"Q2", "A2"}, {"Q3", "A3"}, {"Q4", "A4"}, {"Q5", "A5"}} {
		if err := sys.Ingest(ctx, p[0], p[1]); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}
	if _, err := sys.Digest(ctx); err != nil {
		t.Fatalf("Digest (first): %v", err)
	}
	if _, err := sys.Digest(ctx); err != nil {
		t.Fatalf("Digest (second): %v", err)
	}

	created, err := sys.ConsolidateAll(ctx)
	if err != nil {
		t.Fatalf("ConsolidateAll: %v", err)
	}
	if created != 1 {
		t.Fatalf("ConsolidateAll created %d, want 1", created)
	}
}

// TestEthicsGateEndToEnd is Scenario F exercised through the facade.
func TestEthicsGateEndToEnd(t *testing.T) {
	sys := newTestSystem(t, WithEthics([]float32{1, 0, 0}, 0.95))

	if _, err := sys.Evaluate([]float32{0.95, 0.05, 0.05}); err != nil {
		t.Fatalf("Evaluate(aligned): %v", err)
	}
	if _, err := sys.Evaluate([]float32{0, 1, 0}); err == nil {
		t.Fatal("Evaluate(orthogonal): expected EthicsViolation, got nil")
	}
}

func TestEvaluateWithoutEthicsErrors(t *testing.T) {
	sys := newTestSystem(t)
	if _, err := sys.Evaluate([]float32{1, 0, 0}); err == nil {
		t.Fatal("Evaluate without ethics: expected error, got nil")
	}
}
