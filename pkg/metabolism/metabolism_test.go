package metabolism

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/synapse-mem/synapse-go/pkg/buffer"
	"github.com/synapse-mem/synapse-go/pkg/core"
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

func newHarness(t *testing.T) (*buffer.SQLiteBuffer, *core.SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	buf, err := buffer.NewSQLiteBuffer(buffer.DefaultConfig(filepath.Join(t.TempDir(), "buffer.db")))
	if err != nil {
		t.Fatalf("NewSQLiteBuffer: %v", err)
	}
	if err := buf.Init(ctx); err != nil {
		t.Fatalf("buffer Init: %v", err)
	}
	t.Cleanup(func() { buf.Close() })

	store, err := core.NewSQLiteStore(core.DefaultConfig(filepath.Join(t.TempDir(), "store.db")))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("store Init: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return buf, store
}

func pushInteractions(t *testing.T, buf *buffer.SQLiteBuffer, pairs [][2]string) {
	t.Helper()
	ctx := context.Background()
	for _, pair := range pairs {
		if err := buf.Push(ctx, core.NewInteraction(pair[0], pair[1])); err != nil {
			t.Fatalf("Push(%v): %v", pair, err)
		}
	}
}

// TestDigestBelowThreshold is Scenario A: fewer interactions than the
// threshold leaves everything untouched.
func TestDigestBelowThreshold(t *testing.T) {
	buf, store := newHarness(t)
	pushInteractions(t, buf, [][2]string{{"Q0", "A0"}, {"Q1", "A1"}})

	m := New(buf, store, stubLLM{}, stubEmbedder{vector: []float32{0.1, 0.2, 0.3}})

	ctx := context.Background()
	processed, err := m.Digest(ctx)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if processed != 0 {
		t.Errorf("Digest returned %d, want 0", processed)
	}

	length, err := buf.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if length != 2 {
		t.Errorf("buffer length = %d, want 2", length)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("store count = %d, want 0", count)
	}
}

// TestDigestAtThreshold is Scenario B.
func TestDigestAtThreshold(t *testing.T) {
	buf, store := newHarness(t)
	pushInteractions(t, buf, [][2]string{
		{"Q0", "A0"}, {"Q1", "A1"}, {"Q2", "A2"}, {"Q3", "A3"}, {"Q4", "A4"},
	})

	m := New(buf, store, stubLLM{}, stubEmbedder{vector: []float32{0.1, 0.2, 0.3}}).WithThreshold(3)

	ctx := context.Background()
	processed, err := m.Digest(ctx)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if processed != 3 {
		t.Fatalf("Digest returned %d, want 3", processed)
	}

	length, err := buf.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if length != 2 {
		t.Errorf("buffer length = %d, want 2", length)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("store count = %d, want 1", count)
	}

	nodes, err := store.GetByLayer(ctx, 0)
	if err != nil {
		t.Fatalf("GetByLayer(0): %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("GetByLayer(0) = %d nodes, want 1", len(nodes))
	}
	node := nodes[0]
	if node.NodeType != core.NodeTypeSummary {
		t.Errorf("NodeType = %v, want Summary", node.NodeType)
	}
	if node.Source != "metabolism" {
		t.Errorf("Source = %q, want metabolism", node.Source)
	}
	if node.Content != "SUMMARY" {
		t.Errorf("Content = %q, want SUMMARY", node.Content)
	}
	want := []float32{0.1, 0.2, 0.3}
	if len(node.Embedding) != len(want) {
		t.Fatalf("Embedding = %v, want %v", node.Embedding, want)
	}
	for i := range want {
		if node.Embedding[i] != want[i] {
			t.Errorf("Embedding[%d] = %v, want %v", i, node.Embedding[i], want[i])
		}
	}
}

func TestDigestOnEmptyBufferIsNoop(t *testing.T) {
	buf, store := newHarness(t)
	m := New(buf, store, stubLLM{}, stubEmbedder{vector: []float32{1}}).WithThreshold(1)

	processed, err := m.Digest(context.Background())
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if processed != 0 {
		t.Errorf("Digest on empty buffer = %d, want 0", processed)
	}
}
