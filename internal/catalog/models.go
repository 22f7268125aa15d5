// Package catalog is a read model over the monitored-item catalog. The
// ledger resolves an item's owning system at write time and validates that
// the target environment actually exists for that system. Catalog management
// (creating or renaming items and systems) lives outside this service.
package catalog

import "opscheck/internal/ledger/models"

// System is one monitored system. The Has* flags say which environments the
// system is deployed to; submissions against a missing environment are
// rejected before they reach the ledger.
type System struct {
	ID          int64
	Name        string
	Description string
	HasDev      bool
	HasStg      bool
	HasPrd      bool
}

// SupportsEnv reports whether the system is deployed to env.
func (s System) SupportsEnv(env models.Environment) bool {
	switch env {
	case models.EnvDev:
		return s.HasDev
	case models.EnvStg:
		return s.HasStg
	case models.EnvPrd:
		return s.HasPrd
	}
	return false
}

// CheckItem is one monitored item belonging to a system. Inactive items stay
// in the catalog for historical lookups but are excluded from unchecked-item
// reporting.
type CheckItem struct {
	ID          int64
	SystemID    int64
	Name        string
	Description string
	OrderIndex  int
	Active      bool
}
