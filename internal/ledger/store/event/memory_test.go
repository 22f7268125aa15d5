package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opscheck/internal/ledger/models"
	"opscheck/pkg/platform/sentinel"
)

type EventStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	day   time.Time
}

func (s *EventStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.day = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
}

func TestEventStoreSuite(t *testing.T) {
	suite.Run(t, new(EventStoreSuite))
}

func (s *EventStoreSuite) newEvent(itemID int64, env models.Environment, status models.Status, at time.Time) *models.LogEvent {
	return &models.LogEvent{
		Key:       models.Key{CheckItemID: itemID, CheckDate: s.day, Environment: env},
		UserID:    1,
		SystemID:  1,
		Status:    status,
		Action:    models.ActionCreate,
		CreatedAt: at,
	}
}

func (s *EventStoreSuite) TestAppendAssignsSequentialIDs() {
	first := s.newEvent(1, models.EnvPrd, models.StatusPass, s.day.Add(time.Hour))
	second := s.newEvent(1, models.EnvPrd, models.StatusFail, s.day.Add(2*time.Hour))

	s.Require().NoError(s.store.Append(s.ctx, first))
	s.Require().NoError(s.store.Append(s.ctx, second))
	s.Less(first.ID, second.ID)
}

func (s *EventStoreSuite) TestListByDayOrdersByTimeThenID() {
	// Inserted out of created_at order on purpose.
	late := s.newEvent(1, models.EnvPrd, models.StatusFail, s.day.Add(3*time.Hour))
	early := s.newEvent(2, models.EnvPrd, models.StatusPass, s.day.Add(time.Hour))
	s.Require().NoError(s.store.Append(s.ctx, late))
	s.Require().NoError(s.store.Append(s.ctx, early))

	events, err := s.store.ListByDay(s.ctx, s.day, nil)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(int64(2), events[0].Key.CheckItemID)
	s.Equal(int64(1), events[1].Key.CheckItemID)
}

func (s *EventStoreSuite) TestListByDayBreaksTimestampTiesByID() {
	at := s.day.Add(time.Hour)
	a := s.newEvent(1, models.EnvPrd, models.StatusPass, at)
	b := s.newEvent(1, models.EnvPrd, models.StatusFail, at)
	s.Require().NoError(s.store.Append(s.ctx, a))
	s.Require().NoError(s.store.Append(s.ctx, b))

	events, err := s.store.ListByDay(s.ctx, s.day, nil)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(a.ID, events[0].ID)
	s.Equal(b.ID, events[1].ID)
}

func (s *EventStoreSuite) TestListByDayFiltersEnvironmentAndDay() {
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent(1, models.EnvPrd, models.StatusPass, s.day.Add(time.Hour))))
	s.Require().NoError(s.store.Append(s.ctx, s.newEvent(1, models.EnvStg, models.StatusPass, s.day.Add(time.Hour))))

	other := s.newEvent(1, models.EnvPrd, models.StatusPass, s.day.Add(time.Hour))
	other.Key.CheckDate = s.day.AddDate(0, 0, 1)
	s.Require().NoError(s.store.Append(s.ctx, other))

	prd := models.EnvPrd
	events, err := s.store.ListByDay(s.ctx, s.day, &prd)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(models.EnvPrd, events[0].Key.Environment)
}

func (s *EventStoreSuite) TestLastByKey() {
	s.Run("returns ErrNotFound for untouched key", func() {
		_, err := s.store.LastByKey(s.ctx, models.Key{CheckItemID: 9, CheckDate: s.day, Environment: models.EnvPrd})
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns the chronologically last event", func() {
		s.Require().NoError(s.store.Append(s.ctx, s.newEvent(1, models.EnvPrd, models.StatusPass, s.day.Add(time.Hour))))
		s.Require().NoError(s.store.Append(s.ctx, s.newEvent(1, models.EnvPrd, models.StatusFail, s.day.Add(2*time.Hour))))

		last, err := s.store.LastByKey(s.ctx, models.Key{CheckItemID: 1, CheckDate: s.day, Environment: models.EnvPrd})
		s.Require().NoError(err)
		s.Equal(models.StatusFail, last.Status)
	})
}

func (s *EventStoreSuite) TestConcurrentAppendsAllPreserved() {
	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ev := s.newEvent(1, models.EnvPrd, models.StatusFail, s.day.Add(time.Duration(n)*time.Second))
			_ = s.store.Append(s.ctx, ev)
		}(i)
	}
	wg.Wait()

	events, err := s.store.ListByDay(s.ctx, s.day, nil)
	s.Require().NoError(err)
	s.Len(events, writers)

	seen := make(map[int64]bool)
	for _, ev := range events {
		s.False(seen[ev.ID], "duplicate event ID %d", ev.ID)
		seen[ev.ID] = true
	}
}
