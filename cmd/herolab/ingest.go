package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fantasy-hero-lab/internal/ingestion"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Capture fresh snapshots from the marketplace API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.API.BaseURL == "" {
			return fmt.Errorf("api.base_url must be set for ingestion")
		}

		arch, err := openArchives(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		defer arch.close()

		runner := ingestion.NewRunner(ingestion.RunnerOptions{
			Client:          ingestion.NewClient(cfg.API, logger),
			DataDir:         cfg.DataDir,
			TradeEventStore: arch.trades,
			Log:             logger,
		})
		return runner.IngestAll(ctx)
	},
}
