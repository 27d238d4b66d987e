// Package hashemb is an offline embedding provider based on feature hashing.
// It needs no network and produces deterministic vectors, which makes it the
// model substitute for tests and air-gapped demos.
package hashemb

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// ModelID is reported in manifests built with this provider.
const ModelID = "hashing"

var tokenRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Embedder maps every lowercased word to a signed bucket.
type Embedder struct {
	dim int
}

// New creates a hashing embedder of the given dimension.
func New(dim int) (*Embedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("hashing dimension must be positive, got %d: %w", dim, domain.ErrInvalidConfig)
	}
	return &Embedder{dim: dim}, nil
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dim }

// Embed vectorizes a single text. Token usage equals the word count.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	vec, n := e.vector(text)
	return domain.EmbeddingResult{Embedding: vec, PromptTokens: n, TotalTokens: n}, nil
}

// BatchEmbed vectorizes texts in input order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		vec, n := e.vector(text)
		out.Embeddings[i] = vec
		out.PromptTokens += n
		out.TotalTokens += n
	}
	return out, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

func (e *Embedder) vector(text string) ([]float32, int) {
	vec := make([]float32, e.dim)
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)

	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dim))
		if sum>>63 == 1 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, len(tokens)
}
