package catalog

import "context"

// Store is interface-driven so the ledger and console can run against
// in-memory catalogs in tests and PostgreSQL in production without rewiring.
type Store interface {
	ItemByID(ctx context.Context, itemID int64) (CheckItem, error)
	SystemByID(ctx context.Context, systemID int64) (System, error)
	// ListActiveItems returns active items ordered by (system_id, order_index).
	ListActiveItems(ctx context.Context) ([]CheckItem, error)
}
