package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

var (
	retrieveK           int
	retrieveInstruction string
	retrieveJSON        bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve the top-k passages for a query from the published index",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "top-k", "k", domain.DefaultTopK, "number of passages")
	retrieveCmd.Flags().StringVar(&retrieveInstruction, "instruction", "", "retrieval instruction (default from config)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	instruction := retrieveInstruction
	if instruction == "" {
		instruction = ragFallback(cfg.Retrieval).RetrieverInstruction
	}

	passages, err := retriever.Retrieve(ctx, args[0], instruction, retrieveK)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	if retrieveJSON {
		data, err := json.MarshalIndent(passages, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(passages) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for _, p := range passages {
		cmd.Printf("  [%d] product %d (%.4f)\n", p.Position, p.ProductID, p.Score)
		cmd.Printf("      %s\n", snippet(p.Text, 160))
	}
	return nil
}

func snippet(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
