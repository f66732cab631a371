package main

import (
	"github.com/spf13/cobra"

	"fantasy-hero-lab/internal/compiler"
	"fantasy-hero-lab/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compile trigger HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		arch, err := openArchives(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		defer arch.close()

		srv := server.New(server.Options{
			Compiler: compiler.New(compiler.Options{
				DataDir:  cfg.DataDir,
				RunStore: arch.runs,
				Log:      logger,
			}),
			RunStore: arch.runs,
			Log:      logger,
		})
		return srv.ListenAndServe(cfg.Server)
	},
}
