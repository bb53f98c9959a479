package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "importer-intel",
	Short: "USA importer trade-intelligence dashboard",
	Long:  "Searches for US importers, builds customs-style trade profiles with AI research and lead scrapers, and serves them as an interactive dashboard API.",
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
