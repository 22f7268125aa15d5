// Package service implements the checklist status ledger: the single write
// path (Submit), the read-only log replay (UnresolvedFailures), and the
// record-versus-log diagnostic (Verify). Storage is interface-driven so the
// same logic runs against in-memory stores in tests and PostgreSQL in
// production.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"opscheck/internal/catalog"
	"opscheck/internal/ledger/cache"
	"opscheck/internal/ledger/metrics"
	"opscheck/internal/ledger/models"
	"opscheck/internal/ledger/store/event"
	"opscheck/internal/ledger/store/record"
	dErrors "opscheck/pkg/domain-errors"
	"opscheck/pkg/platform/sentinel"
)

// Validation sentinels. Services wrap them with domain-error codes; callers
// that need to tell the two rejections apart use errors.Is.
var (
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidEnvironment = errors.New("invalid environment")
)

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// Service owns all ledger operations. The write path runs inside the
// injected StoreTx; read paths go straight to the stores.
type Service struct {
	tx      StoreTx
	records record.Store
	events  event.Store
	catalog catalog.Store
	cache   *cache.Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   Clock
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithCache enables the reconstruction result cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics enables ledger metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(tx StoreTx, records record.Store, events event.Store, cat catalog.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		tx:      tx,
		records: records,
		events:  events,
		catalog: cat,
		logger:  logger,
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit records one PASS/FAIL check for a key. In one transaction it
// creates or overwrites the materialized record and appends exactly one log
// event carrying the same resulting status and notes. Concurrent writers to
// the same key are last-write-wins on the record; every attempt stays in the
// log.
func (s *Service) Submit(ctx context.Context, key models.Key, actingUser int64, status models.Status, notes string) (models.Record, models.LogEvent, error) {
	key = key.Normalize()

	if !status.Valid() {
		return models.Record{}, models.LogEvent{}, dErrors.Wrap(ErrInvalidStatus, dErrors.CodeBadRequest, "status must be PASS or FAIL")
	}
	if !key.Environment.Valid() {
		return models.Record{}, models.LogEvent{}, dErrors.Wrap(ErrInvalidEnvironment, dErrors.CodeBadRequest, "environment must be one of dev, stg, prd")
	}

	item, err := s.catalog.ItemByID(ctx, key.CheckItemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Record{}, models.LogEvent{}, dErrors.Wrap(err, dErrors.CodeNotFound, "unknown check item")
		}
		return models.Record{}, models.LogEvent{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "catalog lookup failed")
	}

	system, err := s.catalog.SystemByID(ctx, item.SystemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Record{}, models.LogEvent{}, dErrors.Wrap(err, dErrors.CodeNotFound, "unknown system for check item")
		}
		return models.Record{}, models.LogEvent{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "catalog lookup failed")
	}
	if !system.SupportsEnv(key.Environment) {
		return models.Record{}, models.LogEvent{}, dErrors.Wrap(ErrInvalidEnvironment, dErrors.CodeBadRequest, "system has no "+string(key.Environment)+" environment")
	}

	// Missing failure notes are tolerated but discouraged.
	if status == models.StatusFail && notes == "" {
		s.logger.WarnContext(ctx, "FAIL submitted without notes",
			"check_item_id", key.CheckItemID,
			"environment", string(key.Environment),
			"user_id", actingUser,
		)
	}

	now := s.clock()
	rec := models.Record{
		Key:       key,
		UserID:    actingUser,
		SystemID:  item.SystemID,
		Status:    status,
		Notes:     notes,
		CheckedAt: now,
	}
	ev := models.LogEvent{
		Key:       key,
		UserID:    actingUser,
		SystemID:  item.SystemID,
		Status:    status,
		Notes:     notes,
		CreatedAt: now,
	}

	err = s.tx.RunInTx(ctx, key, func(txCtx context.Context, st Stores) error {
		created, err := st.Records.Upsert(txCtx, &rec)
		if err != nil {
			return err
		}
		if created {
			ev.Action = models.ActionCreate
		} else {
			ev.Action = models.ActionUpdate
		}
		return st.Events.Append(txCtx, &ev)
	})
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeTimeout {
			return models.Record{}, models.LogEvent{}, err
		}
		return models.Record{}, models.LogEvent{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger write failed")
	}

	s.cache.InvalidateDay(ctx, key.CheckDate)
	if s.metrics != nil {
		s.metrics.IncrementSubmission(string(status), string(key.Environment))
	}
	s.logger.InfoContext(ctx, "checklist submission recorded",
		"check_item_id", key.CheckItemID,
		"environment", string(key.Environment),
		"status", string(status),
		"action", string(ev.Action),
		"user_id", actingUser,
	)
	return rec, ev, nil
}
