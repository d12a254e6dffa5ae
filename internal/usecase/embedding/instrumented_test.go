package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	batchCalls int
	batchSizes []int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = m.result.Embedding
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}, nil
}

// plainMockEmbedder implements only Embedder, not BatchEmbedder.
type plainMockEmbedder struct {
	result domain.EmbeddingResult
	calls  int
}

func (m *plainMockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, nil
}

type mockBudget struct {
	checkErr error
	recorded int64
	checks   int
}

func (m *mockBudget) Check(_ context.Context) error {
	m.checks++
	return m.checkErr
}

func (m *mockBudget) Record(tokens int64) { m.recorded += tokens }

// --- Tests ---

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7}}
	budget := &mockBudget{}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", budget, zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	result, err := p.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
	if budget.recorded != 7 {
		t.Errorf("expected 7 tokens recorded, got %d", budget.recorded)
	}
	if usage.EmbeddingTokens != 7 || !usage.Used {
		t.Errorf("usage not collected: %+v", usage)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: fmt.Errorf("api error")}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", nil, zap.NewNop())

	if _, err := p.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumentedEmbedder_BudgetRejection(t *testing.T) {
	budget := &mockBudget{checkErr: domain.ErrQuotaExceeded}
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", budget, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected domain.ErrQuotaExceeded, got %v", err)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 10}}
	budget := &mockBudget{}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", budget, zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	if inner.batchCalls != 1 {
		t.Errorf("expected 1 batch call, got %d", inner.batchCalls)
	}
	if budget.recorded != 30 {
		t.Errorf("expected 30 tokens recorded, got %d", budget.recorded)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Chunks(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	budget := &mockBudget{}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", budget, zap.NewNop())
	p.batchSize = 2

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 5 {
		t.Fatalf("expected 5 embeddings, got %d", len(res.Embeddings))
	}
	if fmt.Sprint(inner.batchSizes) != "[2 2 1]" {
		t.Errorf("chunk sizes = %v, want [2 2 1]", inner.batchSizes)
	}
	if budget.checks != 3 {
		t.Errorf("expected a budget check per chunk, got %d", budget.checks)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Empty(t *testing.T) {
	p := NewInstrumentedEmbedder(&mockEmbedder{}, "test", "test-model", nil, zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil for empty input")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_BudgetRejection(t *testing.T) {
	budget := &mockBudget{checkErr: domain.ErrQuotaExceeded}
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	p := NewInstrumentedEmbedder(inner, "test", "model", budget, zap.NewNop())

	_, err := p.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
	if inner.batchCalls != 0 {
		t.Error("inner must not be called when budget is exhausted")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: fmt.Errorf("api error")}
	p := NewInstrumentedEmbedder(inner, "test", "model", nil, zap.NewNop())

	if _, err := p.BatchEmbed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_FallbackToSingle(t *testing.T) {
	inner := &plainMockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}, TotalTokens: 5}}
	p := NewInstrumentedEmbedder(inner, "test", "model", nil, zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 || res.TotalTokens != 10 {
		t.Fatalf("unexpected result: %d embeddings, %d tokens", len(res.Embeddings), res.TotalTokens)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 fallback Embed calls, got %d", inner.calls)
	}
}
