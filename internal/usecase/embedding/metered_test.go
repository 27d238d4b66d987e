package embedding

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	short      bool
	batchSizes []int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	n := len(texts)
	if m.short {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = m.result.Embedding
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}, nil
}

// plainEmbedder has no native batch call.
type plainEmbedder struct{ calls int }

func (p *plainEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	p.calls++
	return domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 2}, nil
}

func TestMeteredEmbedder_Embed(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 7}}
	m := NewMeteredEmbedder(inner, "bge-m3", 0, nil, zap.NewNop())

	ctx, usage := domain.ContextWithUsage(context.Background())
	res, err := m.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 {
		t.Fatalf("unexpected vector %v", res.Embedding)
	}
	if usage.EmbeddingTokens != 7 {
		t.Errorf("expected 7 tokens attributed to request, got %d", usage.EmbeddingTokens)
	}
}

func TestMeteredEmbedder_EmbedError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	m := NewMeteredEmbedder(inner, "bge-m3", 0, nil, zap.NewNop())

	if _, err := m.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestMeteredEmbedder_BudgetRejection(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	bt := newTracker(10, 0, BudgetActionReject)
	bt.Record(10)
	m := NewMeteredEmbedder(inner, "bge-m3", 0, bt, zap.NewNop())

	if _, err := m.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if _, err := m.BatchEmbed(context.Background(), []string{"x"}); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected quota error for batch, got %v", err)
	}
	if len(inner.batchSizes) != 0 {
		t.Error("inner must not be called when budget is exhausted")
	}
}

func TestMeteredEmbedder_RecordsBudget(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 4}}
	bt := newTracker(1000, 0, BudgetActionReject)
	m := NewMeteredEmbedder(inner, "bge-m3", 0, bt, zap.NewNop())

	if _, err := m.BatchEmbed(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := bt.RemainingDaily(); got != 988 {
		t.Errorf("expected 988 remaining, got %d", got)
	}
}

func TestMeteredEmbedder_BatchChunks(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 1}}
	m := NewMeteredEmbedder(inner, "bge-m3", 2, nil, zap.NewNop())

	res, err := m.BatchEmbed(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 5 || res.TotalTokens != 5 {
		t.Fatalf("unexpected result: %d vectors, %d tokens", len(res.Embeddings), res.TotalTokens)
	}
	want := []int{2, 2, 1}
	if len(inner.batchSizes) != len(want) {
		t.Fatalf("chunk sizes = %v, want %v", inner.batchSizes, want)
	}
	for i := range want {
		if inner.batchSizes[i] != want[i] {
			t.Fatalf("chunk sizes = %v, want %v", inner.batchSizes, want)
		}
	}
}

func TestMeteredEmbedder_BatchShortResponse(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}, short: true}
	m := NewMeteredEmbedder(inner, "bge-m3", 0, nil, zap.NewNop())

	if _, err := m.BatchEmbed(context.Background(), []string{"a", "b"}); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error on short response, got %v", err)
	}
}

func TestMeteredEmbedder_BatchEmpty(t *testing.T) {
	m := NewMeteredEmbedder(&mockEmbedder{}, "bge-m3", 0, nil, zap.NewNop())

	res, err := m.BatchEmbed(context.Background(), nil)
	if err != nil || len(res.Embeddings) != 0 {
		t.Fatalf("expected empty result, got %+v, %v", res, err)
	}
}

func TestMeteredEmbedder_BatchFallback(t *testing.T) {
	inner := &plainEmbedder{}
	m := NewMeteredEmbedder(inner, "bge-m3", 0, nil, zap.NewNop())

	res, err := m.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 || res.TotalTokens != 6 {
		t.Fatalf("expected per-text fallback, calls=%d tokens=%d", inner.calls, res.TotalTokens)
	}
}
