package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ratesmap",
	Short: "NZ council property valuation map service",
	Long:  "Syncs council valuation rolls (Auckland, Wellington, Queenstown-Lakes) into Postgres or SQLite and serves a value-range filtered property map API.",
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
