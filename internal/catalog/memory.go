package catalog

import (
	"context"
	"sort"
	"sync"

	"opscheck/pkg/platform/sentinel"
)

// InMemory keeps the catalog in maps. Intended for tests and dev mode; it
// intentionally favors clarity over performance.
type InMemory struct {
	mu      sync.RWMutex
	systems map[int64]System
	items   map[int64]CheckItem
}

func NewInMemory() *InMemory {
	return &InMemory{
		systems: make(map[int64]System),
		items:   make(map[int64]CheckItem),
	}
}

// AddSystem seeds a system. Test helper, not part of the Store interface.
func (s *InMemory) AddSystem(sys System) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems[sys.ID] = sys
}

// AddItem seeds a check item. Test helper, not part of the Store interface.
func (s *InMemory) AddItem(item CheckItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

func (s *InMemory) ItemByID(_ context.Context, itemID int64) (CheckItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[itemID]; ok {
		return item, nil
	}
	return CheckItem{}, sentinel.ErrNotFound
}

func (s *InMemory) SystemByID(_ context.Context, systemID int64) (System, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sys, ok := s.systems[systemID]; ok {
		return sys, nil
	}
	return System{}, sentinel.ErrNotFound
}

func (s *InMemory) ListActiveItems(_ context.Context) ([]CheckItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]CheckItem, 0, len(s.items))
	for _, item := range s.items {
		if item.Active {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SystemID != items[j].SystemID {
			return items[i].SystemID < items[j].SystemID
		}
		return items[i].OrderIndex < items[j].OrderIndex
	})
	return items, nil
}
