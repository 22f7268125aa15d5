package record

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opscheck/internal/ledger/models"
	"opscheck/pkg/platform/sentinel"
)

type RecordStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	day   time.Time
}

func (s *RecordStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.day = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
}

func TestRecordStoreSuite(t *testing.T) {
	suite.Run(t, new(RecordStoreSuite))
}

func (s *RecordStoreSuite) newRecord(itemID int64, env models.Environment, status models.Status, at time.Time) *models.Record {
	return &models.Record{
		Key:       models.Key{CheckItemID: itemID, CheckDate: s.day, Environment: env},
		UserID:    1,
		SystemID:  1,
		Status:    status,
		CheckedAt: at,
	}
}

func (s *RecordStoreSuite) TestUpsertCreateThenOverwrite() {
	rec := s.newRecord(1, models.EnvPrd, models.StatusPass, s.day.Add(time.Hour))
	created, err := s.store.Upsert(s.ctx, rec)
	s.Require().NoError(err)
	s.True(created)

	update := s.newRecord(1, models.EnvPrd, models.StatusFail, s.day.Add(2*time.Hour))
	update.Notes = "cpu high"
	created, err = s.store.Upsert(s.ctx, update)
	s.Require().NoError(err)
	s.False(created)

	stored, err := s.store.Get(s.ctx, rec.Key)
	s.Require().NoError(err)
	s.Equal(models.StatusFail, stored.Status)
	s.Equal("cpu high", stored.Notes)
}

func (s *RecordStoreSuite) TestGetUnknownKeyReturnsNotFound() {
	_, err := s.store.Get(s.ctx, models.Key{CheckItemID: 9, CheckDate: s.day, Environment: models.EnvPrd})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RecordStoreSuite) TestCheckedAtNeverRegresses() {
	later := s.newRecord(1, models.EnvPrd, models.StatusPass, s.day.Add(2*time.Hour))
	_, err := s.store.Upsert(s.ctx, later)
	s.Require().NoError(err)

	// A writer with a stale clock still wins the value race but cannot move
	// checked_at backwards.
	stale := s.newRecord(1, models.EnvPrd, models.StatusFail, s.day.Add(time.Hour))
	_, err = s.store.Upsert(s.ctx, stale)
	s.Require().NoError(err)

	stored, err := s.store.Get(s.ctx, stale.Key)
	s.Require().NoError(err)
	s.Equal(models.StatusFail, stored.Status)
	s.True(stored.CheckedAt.Equal(s.day.Add(2 * time.Hour)))
}

func (s *RecordStoreSuite) TestOneRecordPerKey() {
	for i := 0; i < 5; i++ {
		rec := s.newRecord(1, models.EnvPrd, models.StatusPass, s.day.Add(time.Duration(i)*time.Hour))
		_, err := s.store.Upsert(s.ctx, rec)
		s.Require().NoError(err)
	}

	records, err := s.store.ListByDay(s.ctx, s.day, nil)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *RecordStoreSuite) TestListByDayFilters() {
	_, err := s.store.Upsert(s.ctx, s.newRecord(1, models.EnvPrd, models.StatusPass, s.day))
	s.Require().NoError(err)
	_, err = s.store.Upsert(s.ctx, s.newRecord(1, models.EnvStg, models.StatusFail, s.day))
	s.Require().NoError(err)

	other := s.newRecord(2, models.EnvPrd, models.StatusPass, s.day)
	other.Key.CheckDate = s.day.AddDate(0, 0, 1)
	_, err = s.store.Upsert(s.ctx, other)
	s.Require().NoError(err)

	all, err := s.store.ListByDay(s.ctx, s.day, nil)
	s.Require().NoError(err)
	s.Len(all, 2)

	stg := models.EnvStg
	filtered, err := s.store.ListByDay(s.ctx, s.day, &stg)
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal(models.EnvStg, filtered[0].Key.Environment)
}
