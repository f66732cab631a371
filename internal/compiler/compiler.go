// Package compiler provides E2E pipeline orchestration.
// It coordinates: snapshot resolution → tournament aggregation → statistics →
// merge → valuation → portfolio projection → output writes
package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/archive"
	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/merge"
	"fantasy-hero-lab/internal/portfolio"
	"fantasy-hero-lab/internal/snapshot"
	"fantasy-hero-lab/internal/stats"
	"fantasy-hero-lab/internal/table"
	"fantasy-hero-lab/internal/tournament"
	"fantasy-hero-lab/internal/valuation"
)

// Compiler coordinates one batch compilation over the snapshot directory.
// Flow: resolve snapshots → aggregate tournaments → statistics → merge →
// valuation → portfolio projection → write outputs
type Compiler struct {
	dataDir  string
	runStore archive.RunStore
	now      func() time.Time
	log      zerolog.Logger
}

// Options for creating a Compiler.
type Options struct {
	// DataDir is the snapshot store directory (required).
	DataDir string

	// RunStore receives the run ledger entry after each run. Optional; a nil
	// store disables run archiving.
	RunStore archive.RunStore

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time

	Log zerolog.Logger
}

// New creates a new Compiler.
func New(opts Options) *Compiler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Compiler{
		dataDir:  opts.DataDir,
		runStore: opts.RunStore,
		now:      now,
		log:      opts.Log.With().Str("component", "compiler").Logger(),
	}
}

// Run executes the full pipeline. The returned CompileRun is non-nil whenever
// any output was written, so a partial success (hero table written, portfolio
// failed) is visible to the caller alongside the error.
func (c *Compiler) Run(ctx context.Context) (*domain.CompileRun, error) {
	started := c.now().UTC()
	run := &domain.CompileRun{
		RunID:     "run_" + started.Format("060102_150405"),
		StartedAt: started,
	}

	// Phase 1: resolve latest snapshot per source
	c.log.Info().Str("dir", c.dataDir).Msg("resolving source snapshots")
	sources, holdings, err := c.loadSources(run)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (resolve snapshots) failed: %w", err)
	}

	// Phase 2: aggregate tournament results
	matrix, err := tournament.NewAggregator(
		filepath.Join(c.dataDir, domain.TournamentResultsDir), c.log,
	).Aggregate()
	if err != nil {
		return nil, fmt.Errorf("phase 2 (aggregate tournaments) failed: %w", err)
	}
	run.TournamentCols = len(matrix.Columns)
	c.log.Info().Int("tournaments", len(matrix.Columns)).Msg("aggregated tournament results")

	// Phase 3: per-hero statistics over the score matrix
	c.seedBaseScore(matrix, sources.BasicHeroStats)
	stats.NewEngine().Compute(matrix.Table, matrix.Columns)

	// Phase 4: merge into the canonical hero table
	sources.Matrix = matrix.Table
	heroes, err := merge.New(c.log).Merge(sources)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (merge) failed: %w", err)
	}
	run.HeroRows = heroes.NumRows()

	// Phase 5: valuation ratios
	valuation.NewEngine(c.log).Compute(heroes)

	// Phase 6: portfolio projection
	var portfolioView *table.Table
	if holdings != nil {
		portfolioView = portfolio.New(c.log).Project(holdings, heroes, matrix.Columns)
		run.PortfolioRows = portfolioView.NumRows()
	} else {
		run.Warnings = append(run.Warnings, "portfolio snapshot missing, portfolio.csv not updated")
	}

	// Phase 7: write outputs
	err = c.writeOutputs(run, heroes, portfolioView)

	run.FinishedAt = c.now().UTC()
	c.record(ctx, run)
	if err != nil {
		return run, err
	}

	c.log.Info().
		Int("hero_rows", run.HeroRows).
		Int("portfolio_rows", run.PortfolioRows).
		Int("warnings", len(run.Warnings)).
		Msg("pipeline completed")
	return run, nil
}

// loadSources resolves the latest snapshot per source. Only basic_hero_stats
// is fatal when missing; optional sources degrade to a warning.
func (c *Compiler) loadSources(run *domain.CompileRun) (merge.Sources, *table.Table, error) {
	resolver := snapshot.NewResolver(c.dataDir, c.log)

	basic, err := resolver.Latest(string(domain.SourceBasicHeroStats))
	if err != nil {
		return merge.Sources{}, nil, err
	}
	sources := merge.Sources{BasicHeroStats: basic}

	var holdings *table.Table
	for _, src := range domain.OptionalSources {
		t, err := resolver.Latest(string(src))
		if err != nil {
			if !errors.Is(err, snapshot.ErrSourceNotFound) && !errors.Is(err, snapshot.ErrMalformedSnapshot) {
				return merge.Sources{}, nil, err
			}
			c.log.Warn().Str("source", string(src)).Err(err).Msg("optional source unavailable")
			run.Warnings = append(run.Warnings, fmt.Sprintf("source %s unavailable: %v", src, err))
			continue
		}

		switch src {
		case domain.SourceHeroStats:
			sources.HeroStats = t
		case domain.SourceCardSupply:
			sources.CardSupply = t
		case domain.SourceListings:
			sources.Listings = t
		case domain.SourceLastTrades:
			sources.LastTrades = t
		case domain.SourceHeroTrades:
			sources.TradeEvents = t
		case domain.SourceBids:
			sources.Bids = t
		case domain.SourcePortfolio:
			holdings = t
		}
	}
	return sources, holdings, nil
}

// seedBaseScore joins the base fantasy score onto the matrix so the all-scores
// statistics subset includes it.
func (c *Compiler) seedBaseScore(matrix *tournament.Matrix, basic *table.Table) {
	if !basic.HasCol(domain.ColHeroFantasyScore) {
		return
	}
	proj := table.New(domain.ColHeroHandle, domain.ColHeroFantasyScore)
	for _, r := range basic.Rows() {
		if r[domain.ColHeroHandle] == "" {
			continue
		}
		proj.Append(table.Row{
			domain.ColHeroHandle:       r[domain.ColHeroHandle],
			domain.ColHeroFantasyScore: r[domain.ColHeroFantasyScore],
		})
	}
	proj.DedupeBy(domain.ColHeroHandle)

	// Heroes without tournament rows still need statistics, so the join keeps
	// both sides.
	matrix.Table = matrix.Table.OuterJoin(proj, domain.ColHeroHandle)
}

// writeOutputs overwrites the two output files atomically. The hero table
// write failing fails the run; the portfolio write failing after a successful
// hero write is reported as a partial success.
func (c *Compiler) writeOutputs(run *domain.CompileRun, heroes, portfolioView *table.Table) error {
	heroPath := filepath.Join(c.dataDir, domain.OutputAllHeroData)
	if err := snapshot.WriteFileAtomic(heroPath, heroes); err != nil {
		return fmt.Errorf("phase 7 (write outputs) failed: %w", err)
	}
	run.HeroWritten = true

	if portfolioView == nil {
		return nil
	}
	portfolioPath := filepath.Join(c.dataDir, domain.OutputPortfolio)
	if err := snapshot.WriteFileAtomic(portfolioPath, portfolioView); err != nil {
		run.Warnings = append(run.Warnings, fmt.Sprintf("portfolio write failed: %v", err))
		return fmt.Errorf("phase 7: hero table written but portfolio write failed: %w", err)
	}
	run.PortfolioWritten = true
	return nil
}

// record archives the run ledger entry, best-effort.
func (c *Compiler) record(ctx context.Context, run *domain.CompileRun) {
	if c.runStore == nil {
		return
	}
	if err := c.runStore.Insert(ctx, run); err != nil {
		c.log.Warn().Str("run_id", run.RunID).Err(err).Msg("failed to archive compile run")
	}
}
