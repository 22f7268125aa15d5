// Package event stores the append-only log of status-change attempts. Rows
// are never updated or deleted; writers only append, so the log needs no
// locking beyond the insert itself.
package event

import (
	"context"
	"time"

	"opscheck/internal/ledger/models"
)

type Store interface {
	// Append persists one event and fills in its storage sequence ID.
	Append(ctx context.Context, ev *models.LogEvent) error
	// ListByDay returns all events for a calendar day, optionally filtered by
	// environment, ordered by (created_at, id) ascending. One call, one
	// consistent snapshot: reconstruction must never mix reads.
	ListByDay(ctx context.Context, day time.Time, env *models.Environment) ([]models.LogEvent, error)
	// LastByKey returns the chronologically-last event for a key, using the
	// sequence ID to break created_at ties. sentinel.ErrNotFound when the key
	// has no events.
	LastByKey(ctx context.Context, key models.Key) (models.LogEvent, error)
}
