// Package archive persists the pipeline's run ledger and the raw trade event
// history beyond the lifetime of the CSV snapshot directory. Backends:
// memory (tests, default), postgres (run ledger), clickhouse (trade events).
package archive

import (
	"context"

	"fantasy-hero-lab/internal/domain"
)

// RunStore provides access to the compile run ledger.
type RunStore interface {
	// Insert adds a finished run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.CompileRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.CompileRun, error)

	// GetRecent retrieves the most recent runs, newest first, at most limit.
	GetRecent(ctx context.Context, limit int) ([]*domain.CompileRun, error)
}

// TradeEventStore provides access to the trade event history.
type TradeEventStore interface {
	// InsertBulk adds a batch of trade events.
	InsertBulk(ctx context.Context, events []*domain.TradeEvent) error

	// GetByHero retrieves all events for a hero, ordered by timestamp ASC.
	GetByHero(ctx context.Context, heroID string) ([]*domain.TradeEvent, error)

	// GetByTimeRange retrieves events within [start, end] (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TradeEvent, error)
}
