package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fantasy-hero-lab/internal/archive"
	"fantasy-hero-lab/internal/domain"
)

// TradeEventStore implements archive.TradeEventStore using ClickHouse.
// MergeTree does not enforce uniqueness; the trade history is treated as an
// append-only event log and duplicates are resolved at read time upstream.
type TradeEventStore struct {
	conn *Conn
}

// NewTradeEventStore creates a new TradeEventStore.
func NewTradeEventStore(conn *Conn) *TradeEventStore {
	return &TradeEventStore{conn: conn}
}

// Compile-time interface check.
var _ archive.TradeEventStore = (*TradeEventStore)(nil)

// InsertBulk adds a batch of trade events.
func (s *TradeEventStore) InsertBulk(ctx context.Context, events []*domain.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e == nil || e.HeroID == "" {
			return archive.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO hero_trades (
			hero_id, rarity, price, traded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.HeroID, uint8(e.Rarity), e.Price, e.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByHero retrieves all events for a hero, ordered by timestamp ASC.
func (s *TradeEventStore) GetByHero(ctx context.Context, heroID string) ([]*domain.TradeEvent, error) {
	query := `
		SELECT hero_id, rarity, price, traded_at
		FROM hero_trades
		WHERE hero_id = ?
		ORDER BY traded_at ASC
	`

	rows, err := s.conn.Query(ctx, query, heroID)
	if err != nil {
		return nil, fmt.Errorf("query by hero id: %w", err)
	}
	defer rows.Close()

	return scanTradeEvents(rows)
}

// GetByTimeRange retrieves events within [start, end] (inclusive), ordered by
// timestamp ASC.
func (s *TradeEventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TradeEvent, error) {
	query := `
		SELECT hero_id, rarity, price, traded_at
		FROM hero_trades
		WHERE traded_at >= ? AND traded_at <= ?
		ORDER BY traded_at ASC
	`

	rows, err := s.conn.Query(ctx, query, time.Unix(start, 0).UTC(), time.Unix(end, 0).UTC())
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanTradeEvents(rows)
}

// scanTradeEvents scans multiple rows.
func scanTradeEvents(rows driver.Rows) ([]*domain.TradeEvent, error) {
	var events []*domain.TradeEvent

	for rows.Next() {
		var e domain.TradeEvent
		var rarity uint8

		err := rows.Scan(&e.HeroID, &rarity, &e.Price, &e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan trade event row: %w", err)
		}

		e.Rarity = int(rarity)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade event rows: %w", err)
	}

	return events, nil
}
