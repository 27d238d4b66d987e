// Command catalograg builds the product passage index and serves retrieval
// and chat over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/config"
	logpkg "github.com/kailas-cloud/catalograg/internal/logger"
	"github.com/kailas-cloud/catalograg/internal/metrics"
)

var (
	flagEnv    string
	flagConfig string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "catalograg",
	Short:         "Retrieval-augmented answers over the product catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations["skipConfig"] == "true" {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", config.GetEnv(), "environment name (local, dev, prod)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "explicit config file path")
}

func setup() error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load(flagEnv)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err = logpkg.NewLogger(flagEnv, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	// Explicit registration, no init().
	metrics.Register()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
