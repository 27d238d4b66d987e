package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = append(s.got, text)
	return s.result, s.err
}

func TestPrefixEmbedder_PrependsPrefix(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewPrefixEmbedder(inner, "Passage: ")

	result, err := emb.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got[0] != "Passage: hello world" {
		t.Errorf("expected prefixed text, got %q", inner.got[0])
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestPrefixEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	emb := NewPrefixEmbedder(&stubEmbedder{err: innerErr}, "Passage: ")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestPrefixEmbedder_BatchFallsBackToSingle(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{1}, TotalTokens: 2}}
	emb := NewPrefixEmbedder(inner, "Passage: ")

	res, err := emb.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	if res.TotalTokens != 4 {
		t.Errorf("expected 4 tokens, got %d", res.TotalTokens)
	}
	if inner.got[0] != "Passage: a" || inner.got[1] != "Passage: b" {
		t.Errorf("unexpected inner texts: %q", inner.got)
	}
}

func TestQueryText(t *testing.T) {
	got := QueryText("Given a question, retrieve products", "waterproof phone")
	want := "Instruct: Given a question, retrieve products\nQuery: waterproof phone"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRAGConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RAGConfig
		wantErr bool
	}{
		{"valid", RAGConfig{RetrieverInstruction: "find", TopKRetrieval: 5}, false},
		{"upper bound", RAGConfig{RetrieverInstruction: "find", TopKRetrieval: MaxTopK}, false},
		{"zero k", RAGConfig{RetrieverInstruction: "find", TopKRetrieval: 0}, true},
		{"k too large", RAGConfig{RetrieverInstruction: "find", TopKRetrieval: MaxTopK + 1}, true},
		{"blank instruction", RAGConfig{RetrieverInstruction: "  ", TopKRetrieval: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestModelMismatchError(t *testing.T) {
	err := NewModelMismatch("bge-m3", "e5-large")
	if !errors.Is(err, ErrModelMismatch) {
		t.Fatal("expected ErrModelMismatch")
	}
	var mm *ModelMismatchError
	if !errors.As(err, &mm) || mm.Indexed != "bge-m3" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequestUsage_NilSafe(t *testing.T) {
	var u *RequestUsage
	u.AddTokens(3)
	u.AddCacheHit()

	ctx, usage := ContextWithUsage(context.Background())
	UsageFrom(ctx).AddTokens(7)
	UsageFrom(ctx).AddCacheHit()
	if usage.EmbeddingTokens != 7 || usage.CacheHits != 1 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}
