package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type mockEmbedder struct {
	dim  int
	name string
	fail string // text that triggers an error, for failure-path tests
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == m.fail {
		return nil, fmt.Errorf("mock embed failure for %q", text)
	}
	vec := make([]float32, m.dim)
	for i := range vec {
		vec[i] = float32(len(text))
	}
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return DefaultEmbedBatch(ctx, m, texts)
}

func (m *mockEmbedder) Dimension() int       { return m.dim }
func (m *mockEmbedder) ProviderName() string { return m.name }

func TestDefaultEmbedBatchPreservesOrder(t *testing.T) {
	embedder := &mockEmbedder{dim: 3, name: "mock"}
	texts := []string{"a", "bb", "ccc", "dddd", "e"}

	vectors, err := DefaultEmbedBatch(context.Background(), embedder, texts)
	if err != nil {
		t.Fatalf("DefaultEmbedBatch: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	for i, text := range texts {
		want := float32(len(text))
		if vectors[i][0] != want {
			t.Errorf("vectors[%d][0] = %v, want %v", i, vectors[i][0], want)
		}
	}
}

func TestDefaultEmbedBatchPropagatesError(t *testing.T) {
	embedder := &mockEmbedder{dim: 3, name: "mock", fail: "bad"}
	_, err := DefaultEmbedBatch(context.Background(), embedder, []string{"good", "bad", "also-good"})
	if err == nil {
		t.Fatal("DefaultEmbedBatch: expected error, got nil")
	}
}

type mockLLM struct {
	generateFn func(prompt string) (string, error)
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ int) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(prompt)
	}
	return "generated: " + prompt, nil
}

func (m *mockLLM) GenerateWithParams(ctx context.Context, prompt string, maxTokens int, _, _ float32) (string, error) {
	return m.Generate(ctx, prompt, maxTokens)
}

func (m *mockLLM) Summarize(ctx context.Context, text string) (string, error) {
	return DefaultSummarize(ctx, m, text)
}

func TestDefaultSummarizeWrapsPrompt(t *testing.T) {
	var seenPrompt string
	llm := &mockLLM{generateFn: func(prompt string) (string, error) {
		seenPrompt = prompt
		return "SUMMARY", nil
	}}

	summary, err := DefaultSummarize(context.Background(), llm, "the transcript")
	if err != nil {
		t.Fatalf("DefaultSummarize: %v", err)
	}
	if summary != "SUMMARY" {
		t.Errorf("summary = %q, want SUMMARY", summary)
	}
	if !strings.Contains(seenPrompt, "the transcript") {
		t.Errorf("prompt %q does not contain source text", seenPrompt)
	}
}

func TestDefaultSummarizePropagatesError(t *testing.T) {
	llm := &mockLLM{generateFn: func(string) (string, error) {
		return "", errors.New("boom")
	}}
	_, err := DefaultSummarize(context.Background(), llm, "x")
	if err == nil {
		t.Fatal("DefaultSummarize: expected error, got nil")
	}
}
