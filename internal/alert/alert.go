// Package alert sweeps the ledger at configured times of day and notifies
// about unresolved failures and unchecked items.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"opscheck/internal/ledger/models"
)

// Ledger is the read surface the sweep consumes.
type Ledger interface {
	UnresolvedFailures(ctx context.Context, date time.Time, env *models.Environment) ([]models.FailureSummary, error)
	Unchecked(ctx context.Context, date time.Time, env *models.Environment) ([]models.UncheckedItem, error)
}

// Report is one environment's sweep outcome.
type Report struct {
	RunID       string
	Date        time.Time
	Environment models.Environment
	Failures    []models.FailureSummary
	Unchecked   []models.UncheckedItem
}

// Notifier delivers a sweep report. Implementations must be safe for
// concurrent use; environments are swept in parallel.
type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

// Clock abstracts time.Now for tests.
type Clock func() time.Time

// Worker runs the sweep at the configured wall-clock times.
type Worker struct {
	ledger   Ledger
	notifier Notifier
	logger   *slog.Logger
	times    []string // HH:MM, sorted
	clock    Clock
}

// Option configures a Worker.
type Option func(*Worker)

// WithClock overrides the worker's time source.
func WithClock(clock Clock) Option {
	return func(w *Worker) {
		w.clock = clock
	}
}

// NewWorker builds a sweep worker. times entries must be HH:MM, validated by
// the config layer.
func NewWorker(ledger Ledger, notifier Notifier, logger *slog.Logger, times []string, opts ...Option) *Worker {
	sorted := make([]string, len(times))
	copy(sorted, times)
	sort.Strings(sorted)

	w := &Worker{
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		times:    sorted,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done, firing a sweep at each configured time.
func (w *Worker) Run(ctx context.Context) error {
	if len(w.times) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		now := w.clock()
		next := w.nextAfter(now)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		day := next.UTC().Truncate(24 * time.Hour)
		if err := w.RunOnce(ctx, day); err != nil {
			w.logger.ErrorContext(ctx, "alert sweep failed", "error", err.Error())
		}
	}
}

// nextAfter returns the earliest configured trigger strictly after now.
func (w *Worker) nextAfter(now time.Time) time.Time {
	for _, t := range w.times {
		parsed, err := time.Parse("15:04", t)
		if err != nil {
			continue
		}
		candidate := time.Date(now.Year(), now.Month(), now.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		if candidate.After(now) {
			return candidate
		}
	}
	// All of today's times have passed; wrap to tomorrow's first slot.
	first, _ := time.Parse("15:04", w.times[0])
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
		first.Hour(), first.Minute(), 0, 0, now.Location())
}

// RunOnce sweeps every environment for the given day in parallel and sends a
// notification for each environment with findings.
func (w *Worker) RunOnce(ctx context.Context, day time.Time) error {
	runID := uuid.NewString()
	w.logger.InfoContext(ctx, "alert sweep started",
		"run_id", runID,
		"check_date", day.Format("2006-01-02"),
	)

	var mu sync.Mutex
	var notified int

	g, gctx := errgroup.WithContext(ctx)
	for _, env := range models.Environments {
		g.Go(func() error {
			report, err := w.sweepEnv(gctx, runID, day, env)
			if err != nil {
				return err
			}
			if len(report.Failures) == 0 && len(report.Unchecked) == 0 {
				return nil
			}
			if err := w.notifier.Notify(gctx, report); err != nil {
				return fmt.Errorf("notify %s: %w", env, err)
			}
			mu.Lock()
			notified++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "alert sweep finished",
		"run_id", runID,
		"environments_notified", notified,
	)
	return nil
}

func (w *Worker) sweepEnv(ctx context.Context, runID string, day time.Time, env models.Environment) (Report, error) {
	failures, err := w.ledger.UnresolvedFailures(ctx, day, &env)
	if err != nil {
		return Report{}, fmt.Errorf("list failures for %s: %w", env, err)
	}
	unchecked, err := w.ledger.Unchecked(ctx, day, &env)
	if err != nil {
		return Report{}, fmt.Errorf("list unchecked for %s: %w", env, err)
	}
	return Report{
		RunID:       runID,
		Date:        day,
		Environment: env,
		Failures:    failures,
		Unchecked:   unchecked,
	}, nil
}

// LogNotifier emits reports as structured log lines. It stands in for a chat
// or paging integration.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, report Report) error {
	for _, f := range report.Failures {
		n.logger.WarnContext(ctx, "unresolved failure",
			"run_id", report.RunID,
			"environment", string(report.Environment),
			"system", f.SystemName,
			"item", f.ItemName,
			"first_fail_at", f.FirstFailAt.UTC().Format(time.RFC3339),
			"notes", f.Notes,
		)
	}
	if len(report.Unchecked) > 0 {
		n.logger.WarnContext(ctx, "unchecked items remain",
			"run_id", report.RunID,
			"environment", string(report.Environment),
			"count", len(report.Unchecked),
		)
	}
	return nil
}
