package indexer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/logger"
	"github.com/kailas-cloud/catalograg/internal/metrics"
	"github.com/kailas-cloud/catalograg/internal/repository/artifact"
	"github.com/kailas-cloud/catalograg/internal/tokenizer"
	"github.com/kailas-cloud/catalograg/internal/vectorindex"
)

// Options configures a build.
type Options struct {
	Model         string
	PassagePrefix string
	BatchSize     int
}

// Report summarizes a finished build.
type Report struct {
	BuildID    string
	Passages   int
	Dimension  int
	Tokens     int
	OverBudget []int
	Duration   time.Duration
}

// Service rebuilds the vector index from the catalog. At most one build runs
// at a time per Service.
type Service struct {
	catalog  Catalog
	builder  PassageBuilder
	embedder *domain.PrefixEmbedder
	counter  tokenizer.Counter
	builds   Builds
	opts     Options

	mu      sync.Mutex
	running atomic.Bool
}

// New creates an indexer. embedder must not add the passage prefix itself.
func New(
	catalog Catalog, builder PassageBuilder, embedder domain.Embedder,
	counter tokenizer.Counter, builds Builds, opts Options,
) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	return &Service{
		catalog:  catalog,
		builder:  builder,
		embedder: domain.NewPrefixEmbedder(embedder, opts.PassagePrefix),
		counter:  counter,
		builds:   builds,
		opts:     opts,
	}
}

// Running reports whether a build is in progress.
func (s *Service) Running() bool { return s.running.Load() }

// Build runs one full indexing pass and publishes the result. The previously
// published build stays current on any failure.
func (s *Service) Build(ctx context.Context) (Report, error) {
	if !s.mu.TryLock() {
		return Report{}, domain.ErrIndexBuildInProgress
	}
	defer s.mu.Unlock()
	s.running.Store(true)
	defer s.running.Store(false)

	start := time.Now()
	report, err := s.build(ctx)
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		logger.FromContext(ctx).Error("Index build failed", zap.Error(err))
		return Report{}, fmt.Errorf("%w: %w", domain.ErrIndexBuildFailed, err)
	}

	report.Duration = time.Since(start)
	metrics.IndexBuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexBuildDuration.Observe(report.Duration.Seconds())
	logger.FromContext(ctx).Info("Index build published",
		zap.String("build_id", report.BuildID),
		zap.Int("passages", report.Passages),
		zap.Int("dimension", report.Dimension),
		zap.Int("tokens", report.Tokens),
		zap.Int("over_budget", len(report.OverBudget)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) build(ctx context.Context) (Report, error) {
	log := logger.FromContext(ctx)

	products, err := s.catalog.Products(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load products: %w", err)
	}
	lookup, err := s.catalog.Attributes(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load attributes: %w", err)
	}

	passages := s.builder.BuildAll(products, lookup)
	log.Info("Passages built", zap.Int("products", len(products)), zap.Int("passages", len(passages)))

	overBudget := s.checkTokens(ctx, passages)

	idx, tokens, err := s.embedAll(ctx, passages)
	if err != nil {
		return Report{}, err
	}

	staging, err := s.builds.Begin()
	if err != nil {
		return Report{}, fmt.Errorf("begin build: %w", err)
	}
	published := false
	defer func() {
		if !published {
			staging.Abort()
		}
	}()

	if err := staging.WriteIndex(idx, s.opts.Model); err != nil {
		return Report{}, err
	}
	if err := staging.WritePassages(ctx, passages); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("before publish: %w", err)
	}
	err = staging.Publish(artifact.Manifest{
		Model:         s.opts.Model,
		Dimension:     idx.Dim(),
		Count:         idx.Len(),
		PassagePrefix: s.opts.PassagePrefix,
		OverBudget:    len(overBudget),
	})
	if err != nil {
		return Report{}, fmt.Errorf("publish: %w", err)
	}
	published = true

	return Report{
		BuildID:    staging.ID(),
		Passages:   idx.Len(),
		Dimension:  idx.Dim(),
		Tokens:     tokens,
		OverBudget: overBudget,
	}, nil
}

// checkTokens flags passages whose prefixed text exceeds the model window.
// Flagged passages are still indexed.
func (s *Service) checkTokens(ctx context.Context, passages []domain.Passage) []int {
	if s.counter == nil {
		return nil
	}
	var over []int
	for _, p := range passages {
		n, exceeded := tokenizer.Exceeds(s.counter, s.embedder.Prefix()+p.Text)
		if !exceeded {
			continue
		}
		over = append(over, p.Position)
		metrics.IndexPassagesOverBudgetTotal.Inc()
		logger.FromContext(ctx).Warn("Passage exceeds token budget",
			zap.Int("position", p.Position),
			zap.Int64("product_id", p.Metadata.ProductID),
			zap.Int("tokens", n),
			zap.Int("limit", s.counter.Limit()),
			zap.Error(domain.ErrTokenBudgetExceeded),
		)
	}
	return over
}

// embedAll encodes passages in batches and appends unit vectors to a new
// index in passage order.
func (s *Service) embedAll(ctx context.Context, passages []domain.Passage) (*vectorindex.Flat, int, error) {
	var idx *vectorindex.Flat
	var tokens int

	for offset := 0; offset < len(passages); offset += s.opts.BatchSize {
		end := min(offset+s.opts.BatchSize, len(passages))
		texts := make([]string, 0, end-offset)
		for _, p := range passages[offset:end] {
			texts = append(texts, p.Text)
		}

		res, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, 0, fmt.Errorf("embed passages %d-%d: %w", offset, end-1, err)
		}
		if len(res.Embeddings) != len(texts) {
			return nil, 0, fmt.Errorf("embed passages %d-%d: got %d vectors: %w",
				offset, end-1, len(res.Embeddings), domain.ErrEmbeddingProviderError)
		}

		for _, v := range res.Embeddings {
			if idx == nil {
				idx = vectorindex.NewFlat(len(v))
			}
			if err := idx.Add(vectorindex.Normalize(v)); err != nil {
				return nil, 0, fmt.Errorf("index passages %d-%d: %w", offset, end-1, err)
			}
		}
		tokens += res.TotalTokens

		logger.FromContext(ctx).Debug("Batch indexed",
			zap.Int("done", end),
			zap.Int("total", len(passages)),
		)
	}

	if idx == nil {
		idx = vectorindex.NewFlat(0)
	}
	return idx, tokens, nil
}
