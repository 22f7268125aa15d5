package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"opscheck/pkg/platform/sentinel"
)

// Postgres reads the catalog tables. Read-only by design: catalog mutations
// are owned by an external admin surface.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ItemByID(ctx context.Context, itemID int64) (CheckItem, error) {
	query := `
		SELECT id, system_id, item_name, COALESCE(description, ''), order_index, active
		FROM check_items
		WHERE id = $1
	`
	var item CheckItem
	err := s.db.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID, &item.SystemID, &item.Name, &item.Description, &item.OrderIndex, &item.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CheckItem{}, sentinel.ErrNotFound
		}
		return CheckItem{}, fmt.Errorf("query check item: %w", err)
	}
	return item, nil
}

func (s *Postgres) SystemByID(ctx context.Context, systemID int64) (System, error) {
	query := `
		SELECT id, system_name, COALESCE(description, ''), has_dev, has_stg, has_prd
		FROM systems
		WHERE id = $1
	`
	var sys System
	err := s.db.QueryRowContext(ctx, query, systemID).Scan(
		&sys.ID, &sys.Name, &sys.Description, &sys.HasDev, &sys.HasStg, &sys.HasPrd,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return System{}, sentinel.ErrNotFound
		}
		return System{}, fmt.Errorf("query system: %w", err)
	}
	return sys, nil
}

func (s *Postgres) ListActiveItems(ctx context.Context) ([]CheckItem, error) {
	query := `
		SELECT id, system_id, item_name, COALESCE(description, ''), order_index, active
		FROM check_items
		WHERE active
		ORDER BY system_id, order_index
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active check items: %w", err)
	}
	defer rows.Close()

	var items []CheckItem
	for rows.Next() {
		var item CheckItem
		if err := rows.Scan(&item.ID, &item.SystemID, &item.Name, &item.Description, &item.OrderIndex, &item.Active); err != nil {
			return nil, fmt.Errorf("scan check item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check items: %w", err)
	}
	return items, nil
}
