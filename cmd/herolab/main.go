// Command herolab runs the card market data pipeline: capture snapshots from
// the marketplace API, compile them into the hero and portfolio tables, or
// serve the compile trigger over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fantasy-hero-lab/internal/archive"
	chstore "fantasy-hero-lab/internal/archive/clickhouse"
	"fantasy-hero-lab/internal/archive/migrations"
	pgstore "fantasy-hero-lab/internal/archive/postgres"
	"fantasy-hero-lab/internal/config"
)

var (
	cfgPath string
	cfg     config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "herolab",
	Short:         "Fantasy card market data pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger, err = buildLogger(cfg.Log)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.AddCommand(compileCmd, serveCmd, ingestCmd)
}

func main() {
	// Cancel the command context on shutdown signals so in-flight captures
	// and compiles stop cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildLogger(lc config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
	}

	var log zerolog.Logger
	if lc.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger(), nil
}

// archives holds the optional persistence backends.
type archives struct {
	runs   archive.RunStore
	trades archive.TradeEventStore

	closers []func()
}

func (a *archives) close() {
	for _, c := range a.closers {
		c()
	}
}

// openArchives connects the backends configured with non-empty DSNs and
// applies their migrations.
func openArchives(ctx context.Context, cfg config.ArchiveConfig) (*archives, error) {
	a := &archives{}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres archive: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres archive: %w", err)
		}
		a.runs = pgstore.NewRunStore(pool)
		a.closers = append(a.closers, pool.Close)
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open clickhouse archive: %w", err)
		}
		a.trades = chstore.NewTradeEventStore(conn)
		a.closers = append(a.closers, func() { _ = conn.Close() })
	}

	return a, nil
}
