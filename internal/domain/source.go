package domain

// Source identifies a logical snapshot source. The value doubles as the
// filename prefix of its timestamped CSV exports.
type Source string

const (
	SourceBasicHeroStats Source = "basic_hero_stats"
	SourceHeroStats      Source = "hero_stats"
	SourceCardSupply     Source = "hero_card_supply"
	SourceListings       Source = "listings"
	SourceLastTrades     Source = "last_trades"
	SourceHeroTrades     Source = "hero_trades"
	SourceBids           Source = "bids"
	SourcePortfolio      Source = "portfolio"
)

// OptionalSources are loaded best-effort: a missing or malformed snapshot
// leaves that source absent from the merge instead of failing the run.
// SourceBasicHeroStats is the only required source; it is the join spine
// every other table attaches to.
var OptionalSources = []Source{
	SourceHeroStats,
	SourceCardSupply,
	SourceListings,
	SourceLastTrades,
	SourceHeroTrades,
	SourceBids,
	SourcePortfolio,
}

// TournamentResultsDir is the sub-directory of the data folder holding one
// result file per tournament, named <slug>_<start>_<end>.csv.
const TournamentResultsDir = "tournament_results"

// Output artifact names, fully overwritten each run.
const (
	OutputAllHeroData = "allHeroData.csv"
	OutputPortfolio   = "portfolio.csv"
)
