package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adbuddy-ai/backend/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "adbuddy",
	Short: "Taste-graph marketing backend",
	Long:  "Plans insight queries with an LLM, resolves tags, audiences, and locations against the Qloo taste graph, and generates competitor lists and ad campaign plans.",
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
