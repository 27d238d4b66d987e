// Package retriever answers top-k passage queries against the published
// build. One Service is created at startup and shared by all requests.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/logger"
	"github.com/kailas-cloud/catalograg/internal/metrics"
	"github.com/kailas-cloud/catalograg/internal/repository/artifact"
	"github.com/kailas-cloud/catalograg/internal/vectorindex"
)

// Status describes the loaded build.
type Status struct {
	Loaded    bool
	BuildID   string
	Model     string
	Count     int
	Dimension int
	CreatedAt time.Time
}

// Service embeds queries and searches the loaded build. The build is loaded
// on first use and swapped atomically on Reload, so a query always sees one
// complete build.
type Service struct {
	loader   Loader
	embedder domain.Embedder
	model    string
	logger   *zap.Logger

	snap  atomic.Pointer[artifact.Snapshot]
	group singleflight.Group
}

// New creates a retriever. model is the configured embedding model; a build
// made with a different model is refused.
func New(loader Loader, embedder domain.Embedder, model string, logger *zap.Logger) *Service {
	return &Service{loader: loader, embedder: embedder, model: model, logger: logger}
}

// Retrieve returns up to k passages ordered by descending score.
func (s *Service) Retrieve(ctx context.Context, query, instruction string, k int) ([]domain.RetrievedPassage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidArgument)
	}

	snap, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.RetrievalDuration.Observe(time.Since(start).Seconds()) }()

	if snap.Index.Len() == 0 {
		metrics.RetrievalResults.Observe(0)
		return []domain.RetrievedPassage{}, nil
	}

	res, err := s.embedder.Embed(ctx, domain.QueryText(instruction, query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := snap.Index.Search(vectorindex.Normalize(res.Embedding), k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]domain.RetrievedPassage, len(hits))
	for i, h := range hits {
		p := snap.Passages[h.Position]
		out[i] = domain.RetrievedPassage{
			Position:  h.Position,
			ProductID: p.Metadata.ProductID,
			Text:      p.Text,
			Score:     h.Score,
		}
	}

	metrics.RetrievalResults.Observe(float64(len(out)))
	logger.FromContext(ctx).Debug("Retrieved passages",
		zap.String("build_id", snap.Manifest.BuildID),
		zap.Int("k", k),
		zap.Int("results", len(out)),
	)
	return out, nil
}

// Status reports the loaded build without triggering a load.
func (s *Service) Status() Status {
	snap := s.snap.Load()
	if snap == nil {
		return Status{}
	}
	return Status{
		Loaded:    true,
		BuildID:   snap.Manifest.BuildID,
		Model:     snap.Manifest.Model,
		Count:     snap.Index.Len(),
		Dimension: snap.Index.Dim(),
		CreatedAt: snap.Manifest.CreatedAt,
	}
}

// HealthCheck loads the build if needed and reports whether it is usable.
func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.ensure(ctx)
	return err
}

// Reload loads the newest published build and swaps it in. On failure the
// previous build keeps serving.
func (s *Service) Reload(ctx context.Context) error {
	shared := context.WithoutCancel(ctx)
	_, err, _ := s.group.Do("reload", func() (any, error) {
		return s.load(shared)
	})
	return err
}

func (s *Service) ensure(ctx context.Context) (*artifact.Snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	// The load is shared by every waiter, so one caller going away must not
	// fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do("load", func() (any, error) {
		if snap := s.snap.Load(); snap != nil {
			return snap, nil
		}
		return s.load(shared)
	})
	if err != nil {
		return nil, err
	}
	return v.(*artifact.Snapshot), nil
}

func (s *Service) load(ctx context.Context) (*artifact.Snapshot, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		metrics.IndexReloadsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Failed to load index", zap.Error(err))
		if errors.Is(err, artifact.ErrNoBuild) {
			return nil, fmt.Errorf("%w: nothing published yet", domain.ErrIndexUnavailable)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	if s.model != "" && snap.Manifest.Model != s.model {
		metrics.IndexReloadsTotal.WithLabelValues("model_mismatch").Inc()
		err := domain.NewModelMismatch(snap.Manifest.Model, s.model)
		s.logger.Error("Refusing index built with another model",
			zap.String("build_id", snap.Manifest.BuildID),
			zap.Error(err),
		)
		return nil, err
	}

	prev := s.snap.Swap(snap)
	metrics.IndexReloadsTotal.WithLabelValues("success").Inc()
	metrics.IndexSize.Set(float64(snap.Index.Len()))

	fields := []zap.Field{
		zap.String("build_id", snap.Manifest.BuildID),
		zap.Int("passages", snap.Index.Len()),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous_build_id", prev.Manifest.BuildID))
	}
	s.logger.Info("Index loaded", fields...)
	return snap, nil
}
