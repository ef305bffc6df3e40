package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/locality-lens/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "locality-lens",
	Short: "Neighborhood analysis around a point of interest",
	Long:  "Geocodes a location, fetches nearby points of interest from OpenStreetMap, computes profile-relevant livability metrics, and writes a narrative summary.",
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
