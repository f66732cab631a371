package memory

import (
	"context"
	"sort"
	"sync"

	"fantasy-hero-lab/internal/archive"
	"fantasy-hero-lab/internal/domain"
)

// TradeEventStore is an in-memory implementation of archive.TradeEventStore.
type TradeEventStore struct {
	mu     sync.RWMutex
	events []*domain.TradeEvent
}

// NewTradeEventStore creates a new in-memory trade event store.
func NewTradeEventStore() *TradeEventStore {
	return &TradeEventStore{}
}

// InsertBulk adds a batch of trade events.
func (s *TradeEventStore) InsertBulk(_ context.Context, events []*domain.TradeEvent) error {
	for _, e := range events {
		if e == nil || e.HeroID == "" {
			return archive.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		eventCopy := *e
		s.events = append(s.events, &eventCopy)
	}
	return nil
}

// GetByHero retrieves all events for a hero, ordered by timestamp ASC.
func (s *TradeEventStore) GetByHero(_ context.Context, heroID string) ([]*domain.TradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeEvent
	for _, e := range s.events {
		if e.HeroID == heroID {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}
	sortByTimestamp(result)
	return result, nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive), ordered by
// timestamp ASC.
func (s *TradeEventStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.TradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeEvent
	for _, e := range s.events {
		ts := e.Timestamp.Unix()
		if ts >= start && ts <= end {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}
	sortByTimestamp(result)
	return result, nil
}

func sortByTimestamp(events []*domain.TradeEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// Verify interface compliance at compile time.
var _ archive.TradeEventStore = (*TradeEventStore)(nil)
