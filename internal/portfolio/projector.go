// Package portfolio projects the canonical hero table onto the user's owned
// cards. Each holding row resolves its own rarity-indexed price/supply
// columns and, for hybrid-tier cards, rescales the score statistics.
package portfolio

import (
	"strings"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/stats"
	"fantasy-hero-lab/internal/table"
)

// Rarity-index tier whose cards score with a handicap multiplier upstream.
const boostedTier = "3"

// Multipliers applied to rows on the boosted tier. Variance is a quadratic
// statistic, so the linear factor enters squared. Z-scores are
// scale-invariant and must not be touched.
const (
	scoreMultiplier    = 1.5
	varianceMultiplier = scoreMultiplier * scoreMultiplier
)

// Projector builds the portfolio view.
type Projector struct {
	log zerolog.Logger
}

// New creates a Projector.
func New(log zerolog.Logger) *Projector {
	return &Projector{log: log.With().Str("component", "portfolio").Logger()}
}

// Project left-joins the hero table onto the holdings by hero_handle (the
// holdings side wins duplicated columns), resolves lastSalePrice /
// lowestPrice / rarityCount from the row's own rarity tier, drops the
// per-rarity source column families, and applies the tier multiplier to the
// score statistics. tournamentCols is the discovered score-column list; those
// columns are score-like for multiplier purposes.
func (p *Projector) Project(holdings, heroes *table.Table, tournamentCols []string) *table.Table {
	if !holdings.HasCol(domain.ColHeroHandle) {
		p.log.Warn().Msg("portfolio snapshot lacks hero_handle, emitting holdings unenriched")
		return holdings.Clone()
	}

	out := holdings.Clone()
	out = out.LeftJoin(heroes, domain.ColHeroHandle, domain.ColHeroHandle)

	p.resolveRarityColumns(out)
	p.dropRarityFamilies(out)
	p.applyTierMultiplier(out, tournamentCols)

	out.Reorder(domain.ColHeroName, domain.ColHeroHandle)
	return out
}

// resolveRarityColumns flattens the per-rarity families into one column each,
// selected per row by the holding's own rarity. Null prices resolve to 0 so
// downstream total-value products stay defined.
func (p *Projector) resolveRarityColumns(t *table.Table) {
	for _, col := range []string{domain.ColLastSalePrice, domain.ColLowestPrice, domain.ColRarityCount} {
		t.AddCol(col)
	}

	badRarity := 0
	for i := 0; i < t.NumRows(); i++ {
		rarity, ok := t.Float(i, domain.ColRarity)
		tier := int(rarity)
		if !ok || domain.RarityLastSalePriceCols[tier] == "" {
			badRarity++
			t.Set(i, domain.ColLastSalePrice, "0")
			t.Set(i, domain.ColLowestPrice, "0")
			t.Set(i, domain.ColRarityCount, "0")
			continue
		}
		t.Set(i, domain.ColLastSalePrice, zeroIfNull(t.Get(i, domain.RarityLastSalePriceCols[tier])))
		t.Set(i, domain.ColLowestPrice, zeroIfNull(t.Get(i, domain.RarityLowestPriceCols[tier])))
		t.Set(i, domain.ColRarityCount, zeroIfNull(t.Get(i, domain.RaritySupplyCountCols[tier])))
	}
	if badRarity > 0 {
		p.log.Warn().Int("rows", badRarity).Msg("holdings with unknown rarity tier resolved to zero prices")
	}
}

// dropRarityFamilies removes the per-rarity source columns now that each row
// carries its resolved flat columns.
func (p *Projector) dropRarityFamilies(t *table.Table) {
	for _, tier := range domain.RarityTiers {
		t.DropCols(
			domain.RarityLowestPriceCols[tier],
			domain.RarityOrderCountCols[tier],
			domain.RarityLastSalePriceCols[tier],
			domain.RarityLastSaleTimeCols[tier],
			domain.RaritySupplyCountCols[tier],
		)
	}
}

// applyTierMultiplier rescales the score statistics of boosted-tier rows.
func (p *Projector) applyTierMultiplier(t *table.Table, tournamentCols []string) {
	scoreCols := append([]string{}, tournamentCols...)
	scoreCols = append(scoreCols,
		domain.ColFantasyScore,
		domain.ColHeroFantasyScore,
		domain.ColGlidingScore,
		stats.ColAverage,
		stats.ColMainAve,
		stats.ColLast4Ave,
		stats.ColMovingAvg3,
	)
	varianceCols := []string{stats.ColVariance, stats.ColMainVariance, stats.ColLast4Variance}
	stdDevCols := []string{stats.ColStdDev, stats.ColMainStdDev, stats.ColLast4StdDev}

	for i := 0; i < t.NumRows(); i++ {
		if rarityIndexTier(t.Get(i, domain.ColHeroRarityIndex)) != boostedTier {
			continue
		}
		scale(t, i, scoreCols, scoreMultiplier)
		scale(t, i, varianceCols, varianceMultiplier)
		scale(t, i, stdDevCols, scoreMultiplier)
	}
}

func scale(t *table.Table, i int, cols []string, factor float64) {
	for _, c := range cols {
		if v, ok := t.Float(i, c); ok {
			t.SetFloat(i, c, v*factor)
		}
	}
}

// rarityIndexTier extracts the tier digit from a hero_rarity_index value of
// the form <hero_id>_<tier>.
func rarityIndexTier(index string) string {
	cut := strings.LastIndexByte(index, '_')
	if cut < 0 {
		return ""
	}
	return index[cut+1:]
}

func zeroIfNull(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
