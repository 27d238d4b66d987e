package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/auth"
	"github.com/kailas-cloud/catalograg/internal/db/postgres"
	"github.com/kailas-cloud/catalograg/internal/document"
	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/repository/catalog"
	"github.com/kailas-cloud/catalograg/internal/repository/ragconfig"
	chiTransport "github.com/kailas-cloud/catalograg/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/catalograg/internal/transport/openai"
	chatuc "github.com/kailas-cloud/catalograg/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/catalograg/internal/usecase/indexer"
	usageuc "github.com/kailas-cloud/catalograg/internal/usecase/usage"
	"github.com/kailas-cloud/catalograg/internal/version"
)

var serveNoIndexer bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat, retrieval and admin HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoIndexer, "no-indexer", false, "reject reindex requests on this instance")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting catalograg API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", flagEnv),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	sqlDB, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	logger.Info("Connected to catalog database")

	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	chain, err := buildEmbedder(ctx, cfg.Embedding, store, cacheTTL(), logger)
	if err != nil {
		return err
	}

	retriever, builds := newRetriever(chain.Embedder, cfg, logger)
	if err := retriever.HealthCheck(ctx); err != nil {
		logger.Warn("No usable index at startup, retrieval returns 503 until a build is published", zap.Error(err))
	}
	if cfg.Index.Watch {
		go func() {
			if err := retriever.Watch(ctx); err != nil {
				logger.Error("Index watcher stopped", zap.Error(err))
			}
		}()
	}

	var indexer chiTransport.Indexer
	if !serveNoIndexer {
		counter, err := newCounter(cfg.Embedding)
		if err != nil {
			return err
		}
		indexer = indexeruc.New(
			catalog.New(sqlDB),
			document.NewBuilder(cfg.Catalog.Language),
			chain.Embedder,
			counter,
			builds,
			indexeruc.Options{
				Model:         modelID(cfg.Embedding),
				PassagePrefix: cfg.Embedding.PassagePrefix,
				BatchSize:     cfg.Embedding.BatchSize,
			},
		)
	}

	configRepo := ragconfig.New(sqlDB, time.Duration(cfg.Retrieval.ConfigCacheSec)*time.Second, ragFallback(cfg.Retrieval))

	// Pass a nil interface when generation is not configured.
	var generator domain.Generator
	if cfg.Generation.Model != "" {
		generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      cfg.Generation.APIKey,
			BaseURL:     cfg.Generation.BaseURL,
			Model:       cfg.Generation.Model,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
			Logger:      logger,
		})
	} else {
		logger.Warn("generation.model is empty, /api/query is disabled")
	}

	chat := chatuc.New(configRepo, retriever, generator, cfg.Retrieval.MaxTopK)
	health := healthuc.New(postgres.Pinger{DB: sqlDB}, chain.Provider, retriever)
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	var budget usageuc.BudgetReader
	if chain.Budget != nil {
		budget = chain.Budget
	}
	usage := usageuc.New(budget)

	server := chiTransport.NewServer(chat, configRepo, indexer, retriever, health, usage)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server, tokens, logger),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func cacheTTL() time.Duration {
	return time.Duration(cfg.Cache.TTLHours) * time.Hour
}
