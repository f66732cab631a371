package domain

import "time"

// TradeEvent is one card sale pulled from the marketplace trade log.
// Events arrive in upstream order; Timestamp carries no sub-second precision.
type TradeEvent struct {
	HeroID    string
	Rarity    int
	Price     float64 // ETH
	Timestamp time.Time
}

// CompileRun records one execution of the compilation pipeline.
type CompileRun struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	HeroRows         int
	PortfolioRows    int
	TournamentCols   int
	Warnings         []string
	HeroWritten      bool
	PortfolioWritten bool
}
