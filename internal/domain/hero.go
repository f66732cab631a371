// Package domain holds the core entities and column vocabulary shared by the
// compilation pipeline stages.
package domain

import "fmt"

// Join key and identity columns shared across source snapshots.
const (
	ColHeroID     = "hero_id"
	ColHeroHandle = "hero_handle"
	ColHeroName   = "hero_name"
)

// Columns carried by the basic stats snapshot (the join spine).
const (
	ColCurrentRank      = "current_rank"
	ColHeroStars        = "hero_stars"
	ColFantasyScore     = "fantasy_score"
	ColHeroFantasyScore = "hero_fantasy_score"
	ColGlidingScore     = "gliding_score"
	ColInflationDegree  = "inflation_degree"
)

// Portfolio holding columns.
const (
	ColRarity          = "rarity"
	ColHeroRarityIndex = "hero_rarity_index"
	ColCardsNumber     = "cards_number"
	ColLastSalePrice   = "lastSalePrice"
	ColLowestPrice     = "lowestPrice"
	ColRarityCount     = "rarityCount"
)

// Rarity tiers for tradeable cards. Tier numbering comes from the upstream
// marketplace: 1 is the scarcest, 4 the most common.
const (
	RarityLegendary = 1
	RarityEpic      = 2
	RaritySilver    = 3
	RarityBronze    = 4
)

// RarityTiers lists every tier in pivot/column order.
var RarityTiers = []int{RarityLegendary, RarityEpic, RaritySilver, RarityBronze}

// Per-rarity column families produced by the supply, listings and trade
// sources. Column selection for a portfolio row is rarity-dependent, so these
// are explicit lookup tables rather than string concatenation against a live
// column list (missing tiers become checked errors).
var (
	RarityLowestPriceCols   = rarityCols("rarity%d_lowest_price")
	RarityOrderCountCols    = rarityCols("rarity%d_order_count")
	RarityLastSalePriceCols = rarityCols("rarity%dlastSalePrice")
	RarityLastSaleTimeCols  = rarityCols("rarity%dlastSaleTime")
	RaritySupplyCountCols   = rarityCols("rarity%dCount")
)

func rarityCols(format string) map[int]string {
	cols := make(map[int]string, len(RarityTiers))
	for _, tier := range RarityTiers {
		cols[tier] = fmt.Sprintf(format, tier)
	}
	return cols
}
