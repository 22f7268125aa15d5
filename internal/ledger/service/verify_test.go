package service

import (
	"strings"
	"time"

	"opscheck/internal/ledger/models"
	dErrors "opscheck/pkg/domain-errors"
)

func (s *LedgerServiceSuite) TestVerifyConsistentAfterWrites() {
	s.submit(101, models.EnvPrd, models.StatusFail, "down")
	s.clock.Advance(time.Minute)
	s.submit(101, models.EnvPrd, models.StatusPass, "recovered")

	report, err := s.svc.Verify(s.ctx, s.key(101, models.EnvPrd))
	s.Require().NoError(err)
	s.True(report.Consistent)
	s.Empty(report.Issues)
}

func (s *LedgerServiceSuite) TestVerifyUntouchedKeyIsNotFound() {
	_, err := s.svc.Verify(s.ctx, s.key(101, models.EnvPrd))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *LedgerServiceSuite) TestVerifyDetectsStatusMismatch() {
	s.submit(101, models.EnvPrd, models.StatusPass, "")

	// Simulate an out-of-band record edit behind the writer's back.
	rec, err := s.records.Get(s.ctx, s.key(101, models.EnvPrd))
	s.Require().NoError(err)
	rec.Status = models.StatusFail
	s.records.Set(rec)

	report, err := s.svc.Verify(s.ctx, s.key(101, models.EnvPrd))
	s.Require().NoError(err)
	s.False(report.Consistent)
	s.Require().Len(report.Issues, 1)
	s.True(strings.Contains(report.Issues[0], "status mismatch"))
}

func (s *LedgerServiceSuite) TestVerifyDetectsNotesMismatch() {
	s.submit(101, models.EnvPrd, models.StatusFail, "disk full")

	rec, err := s.records.Get(s.ctx, s.key(101, models.EnvPrd))
	s.Require().NoError(err)
	rec.Notes = "edited afterwards"
	s.records.Set(rec)

	report, err := s.svc.Verify(s.ctx, s.key(101, models.EnvPrd))
	s.Require().NoError(err)
	s.False(report.Consistent)
	s.Require().Len(report.Issues, 1)
	s.True(strings.Contains(report.Issues[0], "notes mismatch"))
}

func (s *LedgerServiceSuite) TestVerifyRecordWithoutEvents() {
	s.records.Set(models.Record{
		Key:       s.key(101, models.EnvPrd),
		UserID:    7,
		SystemID:  1,
		Status:    models.StatusPass,
		CheckedAt: s.clock.Now(),
	})

	report, err := s.svc.Verify(s.ctx, s.key(101, models.EnvPrd))
	s.Require().NoError(err)
	s.False(report.Consistent)
	s.Require().Len(report.Issues, 1)
	s.True(strings.Contains(report.Issues[0], "no log events"))
}

func (s *LedgerServiceSuite) TestVerifyEventsWithoutRecord() {
	ev := models.LogEvent{
		Key:       s.key(101, models.EnvPrd),
		UserID:    7,
		SystemID:  1,
		Status:    models.StatusFail,
		Action:    models.ActionCreate,
		CreatedAt: s.clock.Now(),
	}
	s.Require().NoError(s.events.Append(s.ctx, &ev))

	report, err := s.svc.Verify(s.ctx, s.key(101, models.EnvPrd))
	s.Require().NoError(err)
	s.False(report.Consistent)
	s.Require().Len(report.Issues, 1)
	s.True(strings.Contains(report.Issues[0], "no record"))
}
