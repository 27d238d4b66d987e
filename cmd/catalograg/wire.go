package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/config"
	"github.com/kailas-cloud/catalograg/internal/db"
	dbMemory "github.com/kailas-cloud/catalograg/internal/db/memory"
	"github.com/kailas-cloud/catalograg/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/catalograg/internal/db/redis"
	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/metrics"
	"github.com/kailas-cloud/catalograg/internal/repository/artifact"
	budgetrepo "github.com/kailas-cloud/catalograg/internal/repository/budget"
	"github.com/kailas-cloud/catalograg/internal/repository/embcache"
	"github.com/kailas-cloud/catalograg/internal/tokenizer"
	"github.com/kailas-cloud/catalograg/internal/transport/hashemb"
	openaiTransport "github.com/kailas-cloud/catalograg/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/catalograg/internal/usecase/embedding"
	retrieveruc "github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

// openCatalog connects to the relational catalog.
func openCatalog(ctx context.Context, c config.CatalogConfig) (*sqlx.DB, error) {
	conn, err := postgres.Open(ctx, postgres.Config{
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return conn, nil
}

// openCache creates the key-value store behind the embedding cache and
// budget counters. The "none" driver returns a nil store.
func openCache(ctx context.Context, c config.CacheConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch c.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     c.Addrs,
			Password:  c.Password,
			KeyPrefix: c.KeyPrefix,
		})
	case "memory":
		store, err = dbMemory.NewStore(c.LRUSize)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", c.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", c.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(c.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store not ready: %w", c.Driver, err)
	}
	return store, nil
}

// modelID identifies the vector space recorded in build manifests.
func modelID(c config.EmbeddingConfig) string {
	if c.Provider == "hashing" {
		return hashemb.ModelID + "-" + strconv.Itoa(c.Dimensions)
	}
	return c.Model
}

// newCounter picks the token counter for the configured embedding model.
func newCounter(c config.EmbeddingConfig) (tokenizer.Counter, error) {
	counter, err := tokenizer.New(tokenizer.Options{
		Provider: c.Provider,
		Model:    c.Model,
		File:     c.TokenizerFile,
		Limit:    c.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("token counter: %w", err)
	}
	return counter, nil
}

// embedderChain is the assembled embedder plus the parts other services read.
type embedderChain struct {
	Embedder domain.Embedder
	Provider domain.HealthChecker
	Budget   *embeddinguc.BudgetTracker // nil when no limit is configured
}

// buildEmbedder assembles the decorator chain: provider -> cached -> metered.
// Provider probes the bare provider.
func buildEmbedder(
	ctx context.Context,
	c config.EmbeddingConfig,
	store db.Store,
	cacheTTL time.Duration,
	logger *zap.Logger,
) (embedderChain, error) {
	model := modelID(c)

	var base interface {
		domain.Embedder
		domain.HealthChecker
	}
	switch c.Provider {
	case "hashing":
		h, err := hashemb.New(c.Dimensions)
		if err != nil {
			return embedderChain{}, err
		}
		base = h
	default:
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     c.APIKey,
			BaseURL:    c.BaseURL,
			Model:      c.Model,
			Dimensions: c.Dimensions,
			Provider:   c.Provider,
			Logger:     logger,
		})
	}

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, embcache.Options{Namespace: model, TTL: cacheTTL},
			metrics.EmbeddingCacheTotal, logger)
	}

	// Pass a nil interface, not a typed nil pointer, when no budget is set.
	var (
		budget  embeddinguc.BudgetChecker
		tracker *embeddinguc.BudgetTracker
	)
	if c.Budget.DailyTokenLimit > 0 || c.Budget.MonthlyTokenLimit > 0 {
		tracker = embeddinguc.NewBudgetTracker(model, embeddinguc.BudgetLimits{
			Daily:   c.Budget.DailyTokenLimit,
			Monthly: c.Budget.MonthlyTokenLimit,
			Action:  embeddinguc.BudgetAction(c.Budget.Action),
		}, logger)
		if store != nil {
			tracker.WithStore(ctx, budgetrepo.New(store))
		}
		budget = tracker
	}

	embedder = embeddinguc.NewMeteredEmbedder(embedder, model, c.BatchSize, budget, logger)

	logger.Info("Embedder created",
		zap.String("provider", c.Provider),
		zap.String("model", model),
		zap.Bool("cache", store != nil),
		zap.Bool("budget", budget != nil),
	)
	return embedderChain{Embedder: embedder, Provider: base, Budget: tracker}, nil
}

// newRetriever opens the artifact store and the retriever over it.
func newRetriever(embedder domain.Embedder, c config.Config, logger *zap.Logger) (*retrieveruc.Service, *artifact.Store) {
	builds := artifact.New(c.Index.Dir, c.Index.KeepBuilds, logger)
	return retrieveruc.New(builds, embedder, modelID(c.Embedding), logger), builds
}

// ragFallback is the built-in RAG configuration with config-file overrides.
func ragFallback(c config.RetrievalConfig) domain.RAGConfig {
	fallback := domain.DefaultRAGConfig()
	if c.DefaultInstruction != "" {
		fallback.RetrieverInstruction = c.DefaultInstruction
	}
	if c.DefaultTopK > 0 {
		fallback.TopKRetrieval = min(c.DefaultTopK, domain.MaxTopK)
	}
	return fallback
}
