// Package record stores the materialized current-status row per key. One row
// per (check_item_id, check_date, environment); every write for the key
// overwrites it in place, never deletes it. History lives in the event log.
package record

import (
	"context"
	"time"

	"opscheck/internal/ledger/models"
)

type Store interface {
	// Get returns the current record for a key, or sentinel.ErrNotFound.
	Get(ctx context.Context, key models.Key) (models.Record, error)
	// Upsert inserts the record or overwrites the existing row for its key.
	// Returns true when the row was created. Same-key upserts serialize on
	// the row; last committed write wins.
	Upsert(ctx context.Context, rec *models.Record) (created bool, err error)
	// ListByDay returns all records for a calendar day, optionally filtered
	// by environment. Feeds the console day stats and unchecked-item report.
	ListByDay(ctx context.Context, day time.Time, env *models.Environment) ([]models.Record, error)
}
