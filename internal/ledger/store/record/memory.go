package record

import (
	"context"
	"sort"
	"sync"
	"time"

	"opscheck/internal/ledger/models"
	"opscheck/pkg/platform/sentinel"
)

// InMemory keeps records in a map keyed by the full reconciliation key.
// Intended for unit tests and dev mode.
type InMemory struct {
	mu      sync.RWMutex
	records map[models.Key]models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[models.Key]models.Record)}
}

func (s *InMemory) Get(_ context.Context, key models.Key) (models.Record, error) {
	key = key.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[key]; ok {
		return rec, nil
	}
	return models.Record{}, sentinel.ErrNotFound
}

func (s *InMemory) Upsert(_ context.Context, rec *models.Record) (bool, error) {
	rec.Key = rec.Key.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.records[rec.Key]
	if exists && rec.CheckedAt.Before(prev.CheckedAt) {
		// CheckedAt must never regress for a key; clamp to the stored value.
		rec.CheckedAt = prev.CheckedAt
	}
	s.records[rec.Key] = *rec
	return !exists, nil
}

func (s *InMemory) ListByDay(_ context.Context, day time.Time, env *models.Environment) ([]models.Record, error) {
	day = models.Day(day)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Record
	for key, rec := range s.records {
		if !key.CheckDate.Equal(day) {
			continue
		}
		if env != nil && key.Environment != *env {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.CheckItemID != out[j].Key.CheckItemID {
			return out[i].Key.CheckItemID < out[j].Key.CheckItemID
		}
		return out[i].Key.Environment < out[j].Key.Environment
	})
	return out, nil
}

// Set force-writes a record without the monotonicity clamp. Test helper for
// simulating out-of-band edits the consistency verifier must flag.
func (s *InMemory) Set(rec models.Record) {
	rec.Key = rec.Key.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
}
