package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/document"
	"github.com/kailas-cloud/catalograg/internal/repository/artifact"
	"github.com/kailas-cloud/catalograg/internal/repository/catalog"
	indexeruc "github.com/kailas-cloud/catalograg/internal/usecase/indexer"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the passage index from the catalog and publish it",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sqlDB, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

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

	counter, err := newCounter(cfg.Embedding)
	if err != nil {
		return err
	}

	svc := indexeruc.New(
		catalog.New(sqlDB),
		document.NewBuilder(cfg.Catalog.Language),
		chain.Embedder,
		counter,
		artifact.New(cfg.Index.Dir, cfg.Index.KeepBuilds, logger),
		indexeruc.Options{
			Model:         modelID(cfg.Embedding),
			PassagePrefix: cfg.Embedding.PassagePrefix,
			BatchSize:     cfg.Embedding.BatchSize,
		},
	)

	report, err := svc.Build(ctx)
	if err != nil {
		return err
	}

	logger.Info("Index published",
		zap.String("build_id", report.BuildID),
		zap.Int("passages", report.Passages),
		zap.Int("over_budget", len(report.OverBudget)),
	)
	cmd.Printf("Published build %s: %d passages, dimension %d, %d tokens in %s\n",
		report.BuildID, report.Passages, report.Dimension, report.Tokens, report.Duration.Round(1e6))
	if n := len(report.OverBudget); n > 0 {
		cmd.Printf("%d passages exceed the %d token limit: %v\n", n, cfg.Embedding.MaxTokens, report.OverBudget)
	}
	return nil
}
