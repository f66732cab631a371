// Package valuation derives per-tier price-to-performance ratios from the
// canonical hero table. Ratios with a zero or negative denominator are set to
// 0 and the row is left out of the value ranking instead of carrying NaN/Inf
// into the output files.
package valuation

import (
	"sort"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/stats"
	"fantasy-hero-lab/internal/table"
)

// Derived valuation columns. Tier-specific names are produced by the col*
// helpers; Coefficient_of_Variation is tier-independent.
const (
	ColCoefVariation = "Coefficient_of_Variation"

	prefixPriceToPerf    = "Price_to_Performance_"
	prefixAdjPriceToPerf = "Adjusted_Price_to_Performance_"
	prefixMarketRelative = "Market_Relative_Price_to_Perf_"
	prefixAdjRank        = "Adj_Price_to_Performance_Rank_"
)

// Tier is one tradeable rarity tracked by the valuation pass.
type Tier struct {
	Rarity int
	Name   string
}

// TrackedTiers lists the tiers valued by default. Legendary and Epic cards
// trade too thinly for the ratios to mean anything.
var TrackedTiers = []Tier{
	{Rarity: domain.RaritySilver, Name: "Silver"},
	{Rarity: domain.RarityBronze, Name: "Bronze"},
}

// ColPriceToPerf returns the raw price/performance column for a tier.
func ColPriceToPerf(t Tier) string { return prefixPriceToPerf + t.Name }

// ColAdjPriceToPerf returns the variability-adjusted ratio column for a tier.
func ColAdjPriceToPerf(t Tier) string { return prefixAdjPriceToPerf + t.Name }

// ColMarketRelative returns the market-relative ratio column for a tier.
func ColMarketRelative(t Tier) string { return prefixMarketRelative + t.Name }

// ColAdjRank returns the ascending value-rank column for a tier.
func ColAdjRank(t Tier) string { return prefixAdjRank + t.Name }

// Engine computes the valuation columns.
type Engine struct {
	Tiers []Tier

	log zerolog.Logger
}

// NewEngine returns an engine over the default tracked tiers.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		Tiers: TrackedTiers,
		log:   log.With().Str("component", "valuation").Logger(),
	}
}

// Compute adds the valuation columns to the hero table in place.
//
// Per tier: Price_to_Performance = lowest price / Main_Last_4_Ave,
// Adjusted_Price_to_Performance divides by the volatility-discounted
// performance Main_Last_4_Ave*(1-CV), Market_Relative normalizes the raw
// ratio by its mean over heroes where it is defined, and
// Adj_Price_to_Performance_Rank ranks the adjusted ratio ascending (rank 1 is
// the cheapest card per point of expected score). Rows whose denominator is
// zero or negative get 0 in every ratio and rank 0, excluding them from the
// ranking.
func (e *Engine) Compute(t *table.Table) {
	undefined := 0
	for i := 0; i < t.NumRows(); i++ {
		ave, _ := t.Float(i, stats.ColLast4Ave)
		std, _ := t.Float(i, stats.ColLast4StdDev)

		cv := 0.0
		if ave > 0 {
			cv = std / ave
		} else {
			undefined++
		}
		t.SetFloat(i, ColCoefVariation, cv)

		for _, tier := range e.Tiers {
			price, hasPrice := t.Float(i, domain.RarityLowestPriceCols[tier.Rarity])
			if !hasPrice {
				price = 0
			}

			ratio, adjusted := 0.0, 0.0
			if ave > 0 {
				ratio = price / ave
				if discounted := ave * (1 - cv); discounted > 0 {
					adjusted = price / discounted
				}
			}
			t.SetFloat(i, ColPriceToPerf(tier), ratio)
			t.SetFloat(i, ColAdjPriceToPerf(tier), adjusted)
		}
	}
	if undefined > 0 {
		e.log.Warn().Int("rows", undefined).
			Msg("heroes without recent main scores excluded from valuation ranking")
	}

	for _, tier := range e.Tiers {
		e.marketRelative(t, tier)
		e.rank(t, tier)
	}
}

// marketRelative divides each defined raw ratio by the mean of the defined
// ratios for the tier. With no defined ratios the column is all zeros.
func (e *Engine) marketRelative(t *table.Table, tier Tier) {
	sum, n := 0.0, 0
	for i := 0; i < t.NumRows(); i++ {
		if v, _ := t.Float(i, ColPriceToPerf(tier)); v > 0 {
			sum += v
			n++
		}
	}

	col := ColMarketRelative(tier)
	if n == 0 || sum == 0 {
		for i := 0; i < t.NumRows(); i++ {
			t.SetFloat(i, col, 0)
		}
		return
	}
	mean := sum / float64(n)
	for i := 0; i < t.NumRows(); i++ {
		v, _ := t.Float(i, ColPriceToPerf(tier))
		if v > 0 {
			t.SetFloat(i, col, v/mean)
		} else {
			t.SetFloat(i, col, 0)
		}
	}
}

// rank assigns 1..n over rows with a positive adjusted ratio, ascending, ties
// broken by row order. Excluded rows keep rank 0.
func (e *Engine) rank(t *table.Table, tier Tier) {
	adjCol := ColAdjPriceToPerf(tier)

	type entry struct {
		row int
		adj float64
	}
	ranked := make([]entry, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if v, _ := t.Float(i, adjCol); v > 0 {
			ranked = append(ranked, entry{row: i, adj: v})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].adj < ranked[b].adj })

	col := ColAdjRank(tier)
	for i := 0; i < t.NumRows(); i++ {
		t.SetFloat(i, col, 0)
	}
	for pos, en := range ranked {
		t.SetFloat(en.row, col, float64(pos+1))
	}
}
