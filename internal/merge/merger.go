// Package merge joins the per-source snapshot tables into the canonical
// all-heroes table. Join order is fixed; changing it changes which duplicate
// survives deduplication, so the sequence below is part of the contract.
package merge

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/table"
)

// ErrMissingColumn is returned when a table that did load is missing a
// column the merge step depends on.
var ErrMissingColumn = errors.New("missing required column")

// Sources carries the loaded per-source tables. Nil means the source had no
// usable snapshot this run; only BasicHeroStats is mandatory.
type Sources struct {
	BasicHeroStats *table.Table
	HeroStats      *table.Table
	CardSupply     *table.Table
	Listings       *table.Table
	LastTrades     *table.Table
	TradeEvents    *table.Table
	Bids           *table.Table
	Matrix         *table.Table
}

// Merger builds the canonical hero table.
type Merger struct {
	log zerolog.Logger
}

// New creates a Merger.
func New(log zerolog.Logger) *Merger {
	return &Merger{log: log.With().Str("component", "merge").Logger()}
}

// Merge left-joins the sources onto the basic stats spine in fixed order:
// detailed stats (handle), card supply (hero_id), listings (hero_id),
// latest trade per rarity (hero_id), bids (hero_id), tournament matrix
// (handle). Rows duplicated upstream (open sell orders produce repeated
// listing entries) are collapsed afterwards by hero_handle, first wins.
func (m *Merger) Merge(s Sources) (*table.Table, error) {
	if s.BasicHeroStats == nil {
		return nil, fmt.Errorf("%w: basic hero stats source is required", ErrMissingColumn)
	}
	for _, col := range []string{domain.ColHeroID, domain.ColHeroHandle} {
		if !s.BasicHeroStats.HasCol(col) {
			return nil, fmt.Errorf("%w: %s in basic_hero_stats", ErrMissingColumn, col)
		}
	}

	// Join keys become strings at load time; identifiers exported as numbers
	// ("42.0") must match their string form everywhere.
	for _, t := range []*table.Table{
		s.BasicHeroStats, s.CardSupply, s.Listings,
		s.LastTrades, s.TradeEvents, s.Bids, s.HeroStats,
	} {
		if t != nil {
			t.NormalizeIntKey(domain.ColHeroID)
		}
	}

	out := s.BasicHeroStats.Clone()

	if s.HeroStats != nil {
		out = m.joinInflation(out, s.HeroStats)
	}
	if s.CardSupply != nil {
		out = m.joinOnID(out, s.CardSupply, "card supply")
	}
	if s.Listings != nil {
		out = m.joinOnID(out, s.Listings, "listings")
	}
	if trades := m.resolveTrades(s); trades != nil {
		out = m.joinOnID(out, trades, "last trades")
	}
	if s.Bids != nil {
		out = m.joinOnID(out, ResolveHighestBids(s.Bids, m.log), "bids")
	}
	if s.Matrix != nil {
		out = out.LeftJoin(s.Matrix, domain.ColHeroHandle, domain.ColHeroHandle)
	}

	out.DedupeBy(domain.ColHeroHandle)
	out.NormalizeIntKey(domain.ColHeroID)
	out.Reorder(domain.ColCurrentRank, domain.ColHeroName, domain.ColHeroHandle)
	return out, nil
}

// joinInflation attaches only the inflation degree from the detailed stats
// snapshot; its dated history columns stay out of the canonical table.
func (m *Merger) joinInflation(out, heroStats *table.Table) *table.Table {
	if !heroStats.HasCol(domain.ColHeroHandle) || !heroStats.HasCol(domain.ColInflationDegree) {
		m.log.Warn().Msg("hero_stats snapshot lacks handle/inflation_degree, skipping join")
		return out
	}
	proj := table.New(domain.ColHeroHandle, domain.ColInflationDegree)
	for _, r := range heroStats.Rows() {
		proj.Append(table.Row{
			domain.ColHeroHandle:      r[domain.ColHeroHandle],
			domain.ColInflationDegree: r[domain.ColInflationDegree],
		})
	}
	return out.LeftJoin(proj, domain.ColHeroHandle, domain.ColHeroHandle)
}

func (m *Merger) joinOnID(out, right *table.Table, name string) *table.Table {
	if !right.HasCol(domain.ColHeroID) {
		m.log.Warn().Str("source", name).Msg("snapshot lacks hero_id, skipping join")
		return out
	}
	return out.LeftJoin(right, domain.ColHeroID, domain.ColHeroID)
}

// resolveTrades prefers the pre-pivoted last_trades snapshot and falls back
// to deriving the per-rarity pivot from the raw trade event log.
func (m *Merger) resolveTrades(s Sources) *table.Table {
	if s.LastTrades != nil {
		return s.LastTrades
	}
	if s.TradeEvents != nil {
		return ResolveLatestTrades(s.TradeEvents, m.log)
	}
	return nil
}
