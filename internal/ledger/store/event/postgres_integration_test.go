//go:build integration

package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opscheck/internal/ledger/models"
	"opscheck/internal/ledger/store/event"
	"opscheck/pkg/platform/sentinel"
	"opscheck/pkg/testutil/containers"
)

type PostgresEventStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *event.Postgres
	day      time.Time
	itemID   int64
}

func TestPostgresEventStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresEventStoreSuite))
}

func (s *PostgresEventStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = event.NewPostgres(s.postgres.DB)
	s.day = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
}

func (s *PostgresEventStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "checklist_logs", "checklist_records", "check_items", "systems"))

	var systemID int64
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx,
		`INSERT INTO systems (system_name, has_dev, has_stg, has_prd) VALUES ('Payments', true, true, true) RETURNING id`,
	).Scan(&systemID))
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx,
		`INSERT INTO check_items (system_id, item_name, order_index, active) VALUES ($1, 'API latency', 1, true) RETURNING id`,
		systemID,
	).Scan(&s.itemID))
}

func (s *PostgresEventStoreSuite) newEvent(env models.Environment, status models.Status, at time.Time) *models.LogEvent {
	return &models.LogEvent{
		Key:       models.Key{CheckItemID: s.itemID, CheckDate: s.day, Environment: env},
		UserID:    1,
		SystemID:  1,
		Status:    status,
		Notes:     "notes for " + string(status),
		Action:    models.ActionCreate,
		CreatedAt: at,
	}
}

func (s *PostgresEventStoreSuite) TestAppendAndListRoundTrip() {
	ctx := context.Background()

	first := s.newEvent(models.EnvPrd, models.StatusPass, s.day.Add(9*time.Hour))
	second := s.newEvent(models.EnvPrd, models.StatusFail, s.day.Add(10*time.Hour))
	s.Require().NoError(s.store.Append(ctx, first))
	s.Require().NoError(s.store.Append(ctx, second))
	s.Less(first.ID, second.ID)

	events, err := s.store.ListByDay(ctx, s.day, nil)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(models.StatusPass, events[0].Status)
	s.Equal(models.StatusFail, events[1].Status)
	s.Equal("notes for FAIL", events[1].Notes)
	s.True(events[0].Key.CheckDate.Equal(s.day))
}

func (s *PostgresEventStoreSuite) TestListByDayOrdersSkewedTimestamps() {
	ctx := context.Background()

	// Inserted in reverse created_at order; the read must sort explicitly.
	late := s.newEvent(models.EnvPrd, models.StatusFail, s.day.Add(10*time.Hour))
	early := s.newEvent(models.EnvPrd, models.StatusPass, s.day.Add(9*time.Hour))
	s.Require().NoError(s.store.Append(ctx, late))
	s.Require().NoError(s.store.Append(ctx, early))

	events, err := s.store.ListByDay(ctx, s.day, nil)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(models.StatusPass, events[0].Status)
	s.Equal(models.StatusFail, events[1].Status)
}

func (s *PostgresEventStoreSuite) TestEnvironmentFilter() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.EnvPrd, models.StatusFail, s.day.Add(time.Hour))))
	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.EnvStg, models.StatusFail, s.day.Add(time.Hour))))

	stg := models.EnvStg
	events, err := s.store.ListByDay(ctx, s.day, &stg)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(models.EnvStg, events[0].Key.Environment)
}

func (s *PostgresEventStoreSuite) TestLastByKey() {
	ctx := context.Background()
	key := models.Key{CheckItemID: s.itemID, CheckDate: s.day, Environment: models.EnvPrd}

	_, err := s.store.LastByKey(ctx, key)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.EnvPrd, models.StatusPass, s.day.Add(9*time.Hour))))
	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.EnvPrd, models.StatusFail, s.day.Add(10*time.Hour))))

	last, err := s.store.LastByKey(ctx, key)
	s.Require().NoError(err)
	s.Equal(models.StatusFail, last.Status)
}
