package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fantasy-hero-lab/internal/compiler"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the latest snapshots into allHeroData.csv and portfolio.csv",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		arch, err := openArchives(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		defer arch.close()

		run, err := compiler.New(compiler.Options{
			DataDir:  cfg.DataDir,
			RunStore: arch.runs,
			Log:      logger,
		}).Run(ctx)
		if err != nil {
			if run != nil && run.HeroWritten {
				return fmt.Errorf("partial success (hero table written): %w", err)
			}
			return err
		}

		fmt.Printf("compiled %d heroes, %d portfolio rows (%d tournaments, %d warnings)\n",
			run.HeroRows, run.PortfolioRows, run.TournamentCols, len(run.Warnings))
		for _, w := range run.Warnings {
			fmt.Println("warning:", w)
		}
		return nil
	},
}
