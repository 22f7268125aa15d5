package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"opscheck/internal/catalog"
	"opscheck/internal/ledger/models"
	dErrors "opscheck/pkg/domain-errors"
	"opscheck/pkg/platform/sentinel"
)

// UnresolvedFailures replays the day's log and returns every key whose final
// status is FAIL, most recently introduced failures first. The result is a
// pure function of the day's events: one snapshot read, one in-memory fold
// per key. A cancelled context returns an error, never truncated results.
func (s *Service) UnresolvedFailures(ctx context.Context, date time.Time, envFilter *models.Environment) ([]models.FailureSummary, error) {
	date = models.Day(date)
	if envFilter != nil && !envFilter.Valid() {
		return nil, dErrors.Wrap(ErrInvalidEnvironment, dErrors.CodeBadRequest, "environment must be one of dev, stg, prd")
	}

	if cached, ok := s.cache.GetFailures(ctx, date, envFilter); ok {
		return cached, nil
	}

	start := s.clock()
	events, err := s.events.ListByDay(ctx, date, envFilter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "event log read failed")
	}

	// Events arrive in (created_at, id) order; appending per key preserves
	// each key's history order.
	histories := make(map[models.Key][]models.LogEvent)
	var keys []models.Key
	for _, ev := range events {
		if _, seen := histories[ev.Key]; !seen {
			keys = append(keys, ev.Key)
		}
		histories[ev.Key] = append(histories[ev.Key], ev)
	}

	summaries := make([]models.FailureSummary, 0, len(keys))
	for _, key := range keys {
		summary, failing := replayHistory(histories[key])
		if !failing {
			continue
		}
		summaries = append(summaries, summary)
	}

	// Discard everything on cancellation: ordering and resolution logic
	// depend on having seen every key's complete history.
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "reconstruction cancelled")
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].FirstFailAt.Equal(summaries[j].FirstFailAt) {
			return summaries[i].FirstFailAt.After(summaries[j].FirstFailAt)
		}
		if summaries[i].Key.CheckItemID != summaries[j].Key.CheckItemID {
			return summaries[i].Key.CheckItemID < summaries[j].Key.CheckItemID
		}
		return summaries[i].Key.Environment < summaries[j].Key.Environment
	})

	if err := s.enrichSummaries(ctx, summaries); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveReconstruction(start, len(summaries))
	}
	s.cache.SetFailures(ctx, date, envFilter, summaries)
	return summaries, nil
}

// replayHistory folds one key's ordered events into its failure summary.
// Returns failing=false when the final status is PASS. For keys ending FAIL
// the summary is always unresolved: an intermediate PASS excursion does not
// clear a failure that came back.
func replayHistory(history []models.LogEvent) (models.FailureSummary, bool) {
	if len(history) == 0 {
		return models.FailureSummary{}, false
	}
	if history[len(history)-1].Status != models.StatusFail {
		return models.FailureSummary{}, false
	}

	// A terminal FAIL guarantees at least one FAIL event exists.
	var firstFail, lastFail models.LogEvent
	found := false
	for _, ev := range history {
		if ev.Status != models.StatusFail {
			continue
		}
		if !found {
			firstFail = ev
			found = true
		}
		lastFail = ev
	}

	notes := lastFail.Notes
	if notes == "" {
		notes = firstFail.Notes
	}

	return models.FailureSummary{
		Key:         firstFail.Key,
		SystemID:    firstFail.SystemID,
		UserID:      firstFail.UserID,
		FirstFailAt: firstFail.CreatedAt,
		Notes:       notes,
		Resolved:    false,
	}, true
}

// enrichSummaries resolves display names from the catalog. Missing catalog
// rows leave names empty rather than dropping the failure.
func (s *Service) enrichSummaries(ctx context.Context, summaries []models.FailureSummary) error {
	for i := range summaries {
		item, err := s.catalog.ItemByID(ctx, summaries[i].Key.CheckItemID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "catalog lookup failed")
		}
		summaries[i].ItemName = item.Name

		system, err := s.catalog.SystemByID(ctx, item.SystemID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "catalog lookup failed")
		}
		summaries[i].SystemName = system.Name
	}
	return nil
}

// DayStats aggregates the day's PASS/FAIL/unchecked counts for the console.
func (s *Service) DayStats(ctx context.Context, date time.Time, envFilter *models.Environment) (models.DayStats, error) {
	date = models.Day(date)
	if envFilter != nil && !envFilter.Valid() {
		return models.DayStats{}, dErrors.Wrap(ErrInvalidEnvironment, dErrors.CodeBadRequest, "environment must be one of dev, stg, prd")
	}

	records, err := s.records.ListByDay(ctx, date, envFilter)
	if err != nil {
		return models.DayStats{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "record read failed")
	}

	var stats models.DayStats
	for _, rec := range records {
		switch rec.Status {
		case models.StatusPass:
			stats.Pass++
		case models.StatusFail:
			stats.Fail++
		}
	}

	unchecked, err := s.Unchecked(ctx, date, envFilter)
	if err != nil {
		return models.DayStats{}, err
	}
	stats.Unchecked = len(unchecked)
	return stats, nil
}

// Unchecked lists active catalog items with no record for the day. With no
// environment filter, each item counts once per environment its system
// actually has.
func (s *Service) Unchecked(ctx context.Context, date time.Time, envFilter *models.Environment) ([]models.UncheckedItem, error) {
	date = models.Day(date)
	if envFilter != nil && !envFilter.Valid() {
		return nil, dErrors.Wrap(ErrInvalidEnvironment, dErrors.CodeBadRequest, "environment must be one of dev, stg, prd")
	}

	items, err := s.catalog.ListActiveItems(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "catalog read failed")
	}
	records, err := s.records.ListByDay(ctx, date, envFilter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "record read failed")
	}

	type itemEnv struct {
		itemID int64
		env    models.Environment
	}
	checked := make(map[itemEnv]struct{}, len(records))
	for _, rec := range records {
		checked[itemEnv{rec.Key.CheckItemID, rec.Key.Environment}] = struct{}{}
	}

	envs := models.Environments
	if envFilter != nil {
		envs = []models.Environment{*envFilter}
	}

	systems := make(map[int64]catalog.System)
	systemFor := func(systemID int64) (catalog.System, bool, error) {
		if sys, ok := systems[systemID]; ok {
			return sys, true, nil
		}
		sys, err := s.catalog.SystemByID(ctx, systemID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return catalog.System{}, false, nil
			}
			return catalog.System{}, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "catalog lookup failed")
		}
		systems[systemID] = sys
		return sys, true, nil
	}

	var out []models.UncheckedItem
	for _, item := range items {
		system, ok, err := systemFor(item.SystemID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, env := range envs {
			if !system.SupportsEnv(env) {
				continue
			}
			if _, done := checked[itemEnv{item.ID, env}]; done {
				continue
			}
			out = append(out, models.UncheckedItem{
				CheckItemID: item.ID,
				SystemID:    item.SystemID,
				ItemName:    item.Name,
				Environment: env,
			})
		}
	}
	return out, nil
}
