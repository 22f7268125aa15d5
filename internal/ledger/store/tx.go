package store

import (
	"context"
	"database/sql"
	"time"

	"opscheck/internal/ledger/models"
	"opscheck/internal/ledger/service"
	"opscheck/internal/ledger/store/event"
	"opscheck/internal/ledger/store/record"
	domainerrors "opscheck/pkg/domain-errors"
	txcontext "opscheck/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// PostgresTx runs record and event writes inside one database transaction.
// Per-key serialization comes from the row lock the record upsert takes, so
// the key argument is not used for locking here.
type PostgresTx struct {
	db      *sql.DB
	records *record.Postgres
	events  *event.Postgres
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{
		db:      db,
		records: record.NewPostgres(db),
		events:  event.NewPostgres(db),
	}
}

func (t *PostgresTx) RunInTx(ctx context.Context, _ models.Key, fn func(ctx context.Context, s service.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txCtx := txcontext.WithTx(ctx, tx)
	if err := fn(txCtx, service.Stores{Records: t.records, Events: t.events}); err != nil {
		return err
	}

	return tx.Commit()
}
