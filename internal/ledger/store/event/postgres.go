package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"opscheck/internal/ledger/models"
	"opscheck/pkg/platform/sentinel"
	txcontext "opscheck/pkg/platform/tx"
)

// Postgres persists events in the checklist_logs table. Append joins an
// ambient transaction from context when one is present so the log entry and
// the materialized upsert commit together.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) querier(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Append(ctx context.Context, ev *models.LogEvent) error {
	ev.Key = ev.Key.Normalize()
	query := `
		INSERT INTO checklist_logs (
			check_item_id, check_date, environment,
			user_id, system_id, status, notes, action, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.querier(ctx).QueryRowContext(ctx, query,
		ev.Key.CheckItemID,
		ev.Key.CheckDate,
		string(ev.Key.Environment),
		ev.UserID,
		ev.SystemID,
		string(ev.Status),
		ev.Notes,
		string(ev.Action),
		ev.CreatedAt,
	).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("insert checklist log: %w", err)
	}
	return nil
}

func (s *Postgres) ListByDay(ctx context.Context, day time.Time, env *models.Environment) ([]models.LogEvent, error) {
	day = models.Day(day)
	query := `
		SELECT id, check_item_id, check_date, environment,
		       user_id, system_id, status, notes, action, created_at
		FROM checklist_logs
		WHERE check_date = $1
	`
	args := []any{day}
	if env != nil {
		query += ` AND environment = $2`
		args = append(args, string(*env))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query checklist logs: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Postgres) LastByKey(ctx context.Context, key models.Key) (models.LogEvent, error) {
	key = key.Normalize()
	query := `
		SELECT id, check_item_id, check_date, environment,
		       user_id, system_id, status, notes, action, created_at
		FROM checklist_logs
		WHERE check_item_id = $1 AND check_date = $2 AND environment = $3
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	rows, err := s.db.QueryContext(ctx, query, key.CheckItemID, key.CheckDate, string(key.Environment))
	if err != nil {
		return models.LogEvent{}, fmt.Errorf("query last checklist log: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return models.LogEvent{}, err
	}
	if len(events) == 0 {
		return models.LogEvent{}, sentinel.ErrNotFound
	}
	return events[0], nil
}

func scanEvents(rows *sql.Rows) ([]models.LogEvent, error) {
	var events []models.LogEvent
	for rows.Next() {
		var (
			ev             models.LogEvent
			environment    string
			status, action string
			notes          sql.NullString
		)
		err := rows.Scan(
			&ev.ID,
			&ev.Key.CheckItemID,
			&ev.Key.CheckDate,
			&environment,
			&ev.UserID,
			&ev.SystemID,
			&status,
			&notes,
			&action,
			&ev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan checklist log: %w", err)
		}
		ev.Key.Environment = models.Environment(environment)
		ev.Key.CheckDate = models.Day(ev.Key.CheckDate)
		ev.Status = models.Status(status)
		ev.Action = models.Action(action)
		ev.Notes = notes.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist logs: %w", err)
	}
	return events, nil
}
