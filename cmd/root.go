package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loanscope/bankmatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bankmatch",
	Short: "Lender-to-RSSD entity resolution pipeline",
	Long:  "Filters syndicated-loan lender names, normalizes them with Claude, resolves them against the FDIC institution registry, and merges the result with quarterly call reports into per-year panels.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
