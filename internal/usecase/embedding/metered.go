package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/metrics"
)

// DefaultBatchSize caps texts per provider call when none is configured.
const DefaultBatchSize = 64

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// MeteredEmbedder enforces the token budget, splits large batches and
// attributes spent tokens to the request in ctx.
// Provider-level metrics live in the transport layer.
type MeteredEmbedder struct {
	inner     domain.Embedder
	model     string
	batchSize int
	budget    BudgetChecker
	logger    *zap.Logger
}

// NewMeteredEmbedder wraps inner. budget may be nil.
func NewMeteredEmbedder(
	inner domain.Embedder, model string, batchSize int,
	budget BudgetChecker, logger *zap.Logger,
) *MeteredEmbedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &MeteredEmbedder{
		inner:     inner,
		model:     model,
		batchSize: batchSize,
		budget:    budget,
		logger:    logger,
	}
}

// Embed vectorizes one text.
func (m *MeteredEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := m.checkBudget(ctx, 1); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	result, err := m.inner.Embed(ctx, text)
	if err != nil {
		m.logger.Error("Embedding request failed",
			zap.String("model", m.model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	m.record(ctx, result.TotalTokens)
	m.logger.Debug("Embedding request completed",
		zap.String("model", m.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed vectorizes texts in chunks of the configured batch size.
// The budget is re-checked before every chunk, so a long indexing run stops
// at the first chunk past a reject limit.
func (m *MeteredEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += m.batchSize {
		end := min(offset+m.batchSize, len(texts))
		chunk := texts[offset:end]

		if err := m.checkBudget(ctx, len(chunk)); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("chunk at %d: %w", offset, err)
		}

		res, err := domain.BatchEmbed(ctx, m.inner, chunk)
		if err != nil {
			m.logger.Error("Batch embedding request failed",
				zap.String("model", m.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"batch embed: provider returned %d vectors for %d texts: %w",
				len(res.Embeddings), len(chunk), domain.ErrEmbeddingProviderError)
		}

		m.record(ctx, res.TotalTokens)
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	m.logger.Debug("Batch embedding completed",
		zap.String("model", m.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (m *MeteredEmbedder) checkBudget(ctx context.Context, n int) error {
	if m.budget == nil {
		return nil
	}
	if err := m.budget.Check(ctx); err != nil {
		m.logger.Error("Budget exceeded",
			zap.String("model", m.model),
			zap.Int("texts", n),
			zap.Error(err),
		)
		return fmt.Errorf("budget check: %w", err)
	}
	return nil
}

func (m *MeteredEmbedder) record(ctx context.Context, tokens int) {
	domain.UsageFrom(ctx).AddTokens(tokens)
	if m.budget == nil || tokens <= 0 {
		return
	}
	m.budget.Record(int64(tokens))
	remaining := metrics.EmbeddingBudgetTokensRemaining
	remaining.WithLabelValues(m.model, "daily").Set(float64(m.budget.RemainingDaily()))
	remaining.WithLabelValues(m.model, "monthly").Set(float64(m.budget.RemainingMonthly()))
}
