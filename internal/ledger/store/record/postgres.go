package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"opscheck/internal/ledger/models"
	"opscheck/pkg/platform/sentinel"
	txcontext "opscheck/pkg/platform/tx"
)

// Postgres persists records in the checklist_records table. Upsert joins an
// ambient transaction from context so it commits atomically with the
// companion log append.
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

func (s *Postgres) Get(ctx context.Context, key models.Key) (models.Record, error) {
	key = key.Normalize()
	query := `
		SELECT check_item_id, check_date, environment,
		       user_id, system_id, status, notes, checked_at
		FROM checklist_records
		WHERE check_item_id = $1 AND check_date = $2 AND environment = $3
	`
	rec, err := s.scanRecord(s.querier(ctx).QueryRowContext(ctx, query,
		key.CheckItemID, key.CheckDate, string(key.Environment)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, sentinel.ErrNotFound
		}
		return models.Record{}, fmt.Errorf("query checklist record: %w", err)
	}
	return rec, nil
}

// Upsert relies on the unique key constraint for same-key serialization: the
// conflicting row is locked for the duration of the transaction, so the
// record and its companion log entry are never split across a partial commit.
// (xmax = 0) distinguishes a fresh insert from an overwrite.
func (s *Postgres) Upsert(ctx context.Context, rec *models.Record) (bool, error) {
	rec.Key = rec.Key.Normalize()
	query := `
		INSERT INTO checklist_records (
			check_item_id, check_date, environment,
			user_id, system_id, status, notes, checked_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (check_item_id, check_date, environment) DO UPDATE SET
			user_id    = EXCLUDED.user_id,
			system_id  = EXCLUDED.system_id,
			status     = EXCLUDED.status,
			notes      = EXCLUDED.notes,
			checked_at = GREATEST(checklist_records.checked_at, EXCLUDED.checked_at)
		RETURNING (xmax = 0)
	`
	var created bool
	err := s.querier(ctx).QueryRowContext(ctx, query,
		rec.Key.CheckItemID,
		rec.Key.CheckDate,
		string(rec.Key.Environment),
		rec.UserID,
		rec.SystemID,
		string(rec.Status),
		rec.Notes,
		rec.CheckedAt,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert checklist record: %w", err)
	}
	return created, nil
}

func (s *Postgres) ListByDay(ctx context.Context, day time.Time, env *models.Environment) ([]models.Record, error) {
	day = models.Day(day)
	query := `
		SELECT check_item_id, check_date, environment,
		       user_id, system_id, status, notes, checked_at
		FROM checklist_records
		WHERE check_date = $1
	`
	args := []any{day}
	if env != nil {
		query += ` AND environment = $2`
		args = append(args, string(*env))
	}
	query += ` ORDER BY check_item_id, environment`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query checklist records: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var (
			rec         models.Record
			environment string
			status      string
			notes       sql.NullString
		)
		err := rows.Scan(
			&rec.Key.CheckItemID, &rec.Key.CheckDate, &environment,
			&rec.UserID, &rec.SystemID, &status, &notes, &rec.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan checklist record: %w", err)
		}
		rec.Key.Environment = models.Environment(environment)
		rec.Key.CheckDate = models.Day(rec.Key.CheckDate)
		rec.Status = models.Status(status)
		rec.Notes = notes.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist records: %w", err)
	}
	return out, nil
}

func (s *Postgres) scanRecord(row *sql.Row) (models.Record, error) {
	var (
		rec         models.Record
		environment string
		status      string
		notes       sql.NullString
	)
	err := row.Scan(
		&rec.Key.CheckItemID,
		&rec.Key.CheckDate,
		&environment,
		&rec.UserID,
		&rec.SystemID,
		&status,
		&notes,
		&rec.CheckedAt,
	)
	if err != nil {
		return models.Record{}, err
	}
	rec.Key.Environment = models.Environment(environment)
	rec.Key.CheckDate = models.Day(rec.Key.CheckDate)
	rec.Status = models.Status(status)
	rec.Notes = notes.String
	return rec, nil
}
