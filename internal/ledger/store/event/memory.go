package event

import (
	"context"
	"sort"
	"sync"
	"time"

	"opscheck/internal/ledger/models"
	"opscheck/pkg/platform/sentinel"
)

// InMemory keeps events in a single slice guarded by an RWMutex. Intended for
// unit tests and dev mode.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	events []models.LogEvent
}

func NewInMemory() *InMemory {
	return &InMemory{nextID: 1}
}

func (s *InMemory) Append(_ context.Context, ev *models.LogEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.Key = ev.Key.Normalize()
	ev.ID = s.nextID
	s.nextID++
	s.events = append(s.events, *ev)
	return nil
}

func (s *InMemory) ListByDay(_ context.Context, day time.Time, env *models.Environment) ([]models.LogEvent, error) {
	day = models.Day(day)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LogEvent
	for _, ev := range s.events {
		if !ev.Key.CheckDate.Equal(day) {
			continue
		}
		if env != nil && ev.Key.Environment != *env {
			continue
		}
		out = append(out, ev)
	}
	sortEvents(out)
	return out, nil
}

func (s *InMemory) LastByKey(_ context.Context, key models.Key) (models.LogEvent, error) {
	key = key.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.LogEvent
	for _, ev := range s.events {
		if ev.Key == key {
			matched = append(matched, ev)
		}
	}
	if len(matched) == 0 {
		return models.LogEvent{}, sentinel.ErrNotFound
	}
	sortEvents(matched)
	return matched[len(matched)-1], nil
}

// sortEvents orders by (created_at, id); the insert does not guarantee
// created_at order under clock skew, so ordering is always explicit.
func sortEvents(events []models.LogEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
}
