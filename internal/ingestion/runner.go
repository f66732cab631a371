package ingestion

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/archive"
	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/snapshot"
	"fantasy-hero-lab/internal/table"
)

// Fetcher is the part of Client the runner needs.
type Fetcher interface {
	FetchSource(ctx context.Context, src domain.Source) (*table.Table, error)
}

// Runner captures one snapshot per source into the data directory.
type Runner struct {
	client  Fetcher
	dataDir string

	// tradeEvents receives the raw hero_trades rows for long-term history.
	// Optional; nil disables archiving.
	tradeEvents archive.TradeEventStore

	now func() time.Time
	log zerolog.Logger
}

// RunnerOptions for creating a Runner.
type RunnerOptions struct {
	Client          Fetcher
	DataDir         string
	TradeEventStore archive.TradeEventStore
	Now             func() time.Time
	Log             zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		client:      opts.Client,
		dataDir:     opts.DataDir,
		tradeEvents: opts.TradeEventStore,
		now:         now,
		log:         opts.Log.With().Str("component", "ingestion").Logger(),
	}
}

// IngestAll fetches and saves every source. Per-source failures are warnings:
// one broken export must not lose the rest of the capture. The basic stats
// source is the exception, since the pipeline cannot run without it.
func (r *Runner) IngestAll(ctx context.Context) error {
	if err := r.ingest(ctx, domain.SourceBasicHeroStats); err != nil {
		return fmt.Errorf("ingest %s: %w", domain.SourceBasicHeroStats, err)
	}

	for _, src := range domain.OptionalSources {
		if err := r.ingest(ctx, src); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Warn().Str("source", string(src)).Err(err).Msg("source capture failed")
		}
	}
	return nil
}

func (r *Runner) ingest(ctx context.Context, src domain.Source) error {
	t, err := r.client.FetchSource(ctx, src)
	if err != nil {
		return err
	}

	path, err := snapshot.SaveTimestamped(r.dataDir, string(src), t, r.now().UTC())
	if err != nil {
		return err
	}
	r.log.Info().Str("source", string(src)).Str("file", path).Int("rows", t.NumRows()).Msg("captured snapshot")

	if src == domain.SourceHeroTrades && r.tradeEvents != nil {
		r.archiveTrades(ctx, t)
	}
	return nil
}

// archiveTrades copies the trade export into the long-term event store,
// best-effort.
func (r *Runner) archiveTrades(ctx context.Context, t *table.Table) {
	events := make([]*domain.TradeEvent, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		heroID := t.Get(i, domain.ColHeroID)
		rarity, err := strconv.Atoi(t.Get(i, domain.ColRarity))
		price, priceOK := t.Float(i, "price")
		ts, tsOK := parseTradeTime(t.Get(i, "timestamp"))
		if heroID == "" || err != nil || !priceOK || !tsOK {
			continue
		}
		events = append(events, &domain.TradeEvent{
			HeroID:    heroID,
			Rarity:    rarity,
			Price:     price,
			Timestamp: ts,
		})
	}
	if len(events) == 0 {
		return
	}
	if err := r.tradeEvents.InsertBulk(ctx, events); err != nil {
		r.log.Warn().Err(err).Int("events", len(events)).Msg("failed to archive trade events")
	}
}

func parseTradeTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}
