package service

import (
	"context"
	"errors"
	"fmt"

	"opscheck/internal/ledger/models"
	dErrors "opscheck/pkg/domain-errors"
	"opscheck/pkg/platform/sentinel"
)

// Verify compares the materialized record for a key against the
// chronologically-last log event. Divergence is surfaced as data, never as an
// error, and is never repaired here. A key with no activity at all returns
// KeyNotFound.
func (s *Service) Verify(ctx context.Context, key models.Key) (models.ConsistencyReport, error) {
	key = key.Normalize()
	if !key.Environment.Valid() {
		return models.ConsistencyReport{}, dErrors.Wrap(ErrInvalidEnvironment, dErrors.CodeBadRequest, "environment must be one of dev, stg, prd")
	}

	rec, recErr := s.records.Get(ctx, key)
	if recErr != nil && !errors.Is(recErr, sentinel.ErrNotFound) {
		return models.ConsistencyReport{}, dErrors.Wrap(recErr, dErrors.CodeUnavailable, "record read failed")
	}
	last, evErr := s.events.LastByKey(ctx, key)
	if evErr != nil && !errors.Is(evErr, sentinel.ErrNotFound) {
		return models.ConsistencyReport{}, dErrors.Wrap(evErr, dErrors.CodeUnavailable, "event log read failed")
	}

	hasRecord := recErr == nil
	hasEvent := evErr == nil

	if !hasRecord && !hasEvent {
		return models.ConsistencyReport{}, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "no activity for key")
	}

	report := models.ConsistencyReport{Key: key, Consistent: true}
	addIssue := func(format string, args ...any) {
		report.Consistent = false
		report.Issues = append(report.Issues, fmt.Sprintf(format, args...))
	}

	switch {
	case hasRecord && !hasEvent:
		addIssue("record exists but the key has no log events")
	case !hasRecord && hasEvent:
		// There is no delete action in this model, so a log without a record
		// is always a divergence.
		addIssue("log events exist but the key has no record (last action %s)", last.Action)
	default:
		if rec.Status != last.Status {
			addIssue("status mismatch: record %s, last event %s", rec.Status, last.Status)
		}
		if rec.Notes != last.Notes {
			addIssue("notes mismatch: record %q, last event %q", rec.Notes, last.Notes)
		}
	}

	if !report.Consistent {
		if s.metrics != nil {
			s.metrics.IncrementDivergence()
		}
		s.logger.WarnContext(ctx, "ledger divergence detected",
			"check_item_id", key.CheckItemID,
			"environment", string(key.Environment),
			"issues", report.Issues,
		)
	}
	return report, nil
}
