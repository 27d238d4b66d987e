package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/catalograg/internal/usecase/evaluation"
)

var (
	evalInstruction string
	evalPerQuery    bool
)

var evalCmd = &cobra.Command{
	Use:   "eval [dataset.yaml]",
	Short: "Score retrieval against a labelled query dataset",
	Long: `Runs every query in the dataset through the published index and reports
Precision@k, Recall@k and MRR. The dataset lists queries with query_id,
query_text and relevant_ids (product ids), plus optional k_values.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalInstruction, "instruction", "", "retrieval instruction (default from config)")
	evalCmd.Flags().BoolVar(&evalPerQuery, "per-query", false, "print scores for every query")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ds, err := evaluation.LoadDataset(args[0])
	if err != nil {
		return err
	}

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
	retriever, _ := newRetriever(chain.Embedder, cfg, logger)

	instruction := evalInstruction
	if instruction == "" {
		instruction = ragFallback(cfg.Retrieval).RetrieverInstruction
	}

	sum, err := evaluation.New(retriever, instruction).Run(ctx, ds)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if evalPerQuery {
		for _, q := range sum.Queries {
			cmd.Printf("%s  RR=%.4f", q.QueryID, q.ReciprocalRank)
			for _, k := range sum.KValues {
				cmd.Printf("  P@%d=%.4f R@%d=%.4f", k, q.PrecisionAtK[k], k, q.RecallAtK[k])
			}
			cmd.Println()
		}
		cmd.Println()
	}

	cmd.Printf("Queries: %d\n", len(sum.Queries))
	for _, k := range sum.KValues {
		cmd.Printf("Precision@%d: %.4f\n", k, sum.MeanPrecision[k])
	}
	for _, k := range sum.KValues {
		cmd.Printf("Recall@%d: %.4f\n", k, sum.MeanRecall[k])
	}
	cmd.Printf("MRR: %.4f\n", sum.MRR)
	return nil
}
