package merge

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/table"
)

// Trade event log columns.
const (
	colPrice      = "price"
	colTimestamp  = "timestamp"
	colHighestBid = "highest_bid"
)

// ResolveLatestTrades reduces the time-ordered trade event log to one row per
// hero with the most recent sale per rarity pivoted into
// rarity{1..4}lastSalePrice / rarity{1..4}lastSaleTime columns. For equal
// timestamps the earlier event in input order wins, which keeps the reduction
// deterministic for reruns over the same snapshot.
func ResolveLatestTrades(events *table.Table, log zerolog.Logger) *table.Table {
	for _, col := range []string{domain.ColHeroID, domain.ColRarity, colPrice, colTimestamp} {
		if !events.HasCol(col) {
			log.Warn().Str("column", col).Msg("trade event log missing column, skipping trade resolution")
			return nil
		}
	}

	type key struct {
		heroID string
		rarity int
	}
	type latest struct {
		price string
		raw   string
		ts    time.Time
	}

	best := make(map[key]latest)
	var heroOrder []string
	seenHero := make(map[string]bool)

	for _, r := range events.Rows() {
		heroID := r[domain.ColHeroID]
		rarity, err := strconv.Atoi(r[domain.ColRarity])
		if heroID == "" || err != nil || rarity < domain.RarityLegendary || rarity > domain.RarityBronze {
			continue
		}
		ts, ok := parseEventTime(r[colTimestamp])
		if !ok {
			continue
		}

		if !seenHero[heroID] {
			seenHero[heroID] = true
			heroOrder = append(heroOrder, heroID)
		}

		k := key{heroID, rarity}
		if cur, exists := best[k]; !exists || ts.After(cur.ts) {
			best[k] = latest{price: r[colPrice], raw: r[colTimestamp], ts: ts}
		}
	}

	cols := []string{domain.ColHeroID}
	for _, tier := range domain.RarityTiers {
		cols = append(cols, domain.RarityLastSalePriceCols[tier], domain.RarityLastSaleTimeCols[tier])
	}
	out := table.New(cols...)

	for _, heroID := range heroOrder {
		row := table.Row{domain.ColHeroID: heroID}
		for _, tier := range domain.RarityTiers {
			if l, ok := best[key{heroID, tier}]; ok {
				row[domain.RarityLastSalePriceCols[tier]] = l.price
				row[domain.RarityLastSaleTimeCols[tier]] = l.raw
			}
		}
		out.Append(row)
	}
	return out
}

// ResolveHighestBids pivots the bid snapshot (hero_id, rarity, highest_bid)
// into rarity{1..4}_highest_bid columns, one row per hero.
func ResolveHighestBids(bids *table.Table, log zerolog.Logger) *table.Table {
	for _, col := range []string{domain.ColHeroID, domain.ColRarity, colHighestBid} {
		if !bids.HasCol(col) {
			log.Warn().Str("column", col).Msg("bids snapshot missing column, passing through unpivoted")
			return bids
		}
	}

	bidCols := make(map[int]string, len(domain.RarityTiers))
	cols := []string{domain.ColHeroID}
	for _, tier := range domain.RarityTiers {
		bidCols[tier] = "rarity" + strconv.Itoa(tier) + "_highest_bid"
		cols = append(cols, bidCols[tier])
	}
	out := table.New(cols...)

	rowFor := make(map[string]table.Row)
	for _, r := range bids.Rows() {
		heroID := r[domain.ColHeroID]
		rarity, err := strconv.Atoi(r[domain.ColRarity])
		if heroID == "" || err != nil || bidCols[rarity] == "" {
			continue
		}
		row, ok := rowFor[heroID]
		if !ok {
			row = table.Row{domain.ColHeroID: heroID}
			rowFor[heroID] = row
			out.Append(row)
		}
		// First bid per (hero, rarity) wins; upstream emits highest first.
		if row[bidCols[rarity]] == "" {
			row[bidCols[rarity]] = r[colHighestBid]
		}
	}
	return out
}

// parseEventTime accepts the timestamp shapes seen in trade exports:
// RFC 3339, a bare datetime, or unix seconds.
func parseEventTime(s string) (time.Time, bool) {
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
