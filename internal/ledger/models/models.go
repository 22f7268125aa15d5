// Package models defines the checklist status ledger's domain types. The
// ledger pairs an append-only log of status-change attempts with one
// materialized current-status row per key; the log is the sole source of
// historical truth.
package models

import "time"

// Status is the outcome of a daily check. Closed set so invalid statuses are
// rejected at the boundary instead of surfacing as storage constraint errors.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Valid reports whether s is a member of the closed set.
func (s Status) Valid() bool {
	return s == StatusPass || s == StatusFail
}

// Environment identifies which deployment of a system a check ran against.
type Environment string

const (
	EnvDev Environment = "dev"
	EnvStg Environment = "stg"
	EnvPrd Environment = "prd"
)

// Environments lists the closed set in display order.
var Environments = []Environment{EnvDev, EnvStg, EnvPrd}

// Valid reports whether e is a member of the closed set.
func (e Environment) Valid() bool {
	return e == EnvDev || e == EnvStg || e == EnvPrd
}

// Action records whether a write created the materialized record or
// overwrote an existing one.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
)

// Key identifies one reconciliation unit: a check item on a calendar day in
// one environment. Checks are shared between assignees, so the acting user is
// deliberately not part of the key.
type Key struct {
	CheckItemID int64
	CheckDate   time.Time // date granularity; normalize with Day
	Environment Environment
}

// Day truncates t to its calendar date in UTC. All CheckDate values pass
// through here so key equality never depends on submission clock precision.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize returns the key with its date truncated to the day.
func (k Key) Normalize() Key {
	k.CheckDate = Day(k.CheckDate)
	return k
}

// Record is the materialized current status for a key. At most one exists per
// key; every write for the key overwrites it in place. CheckedAt is
// monotonically non-decreasing across overwrites of the same key.
type Record struct {
	Key       Key
	UserID    int64 // last writer
	SystemID  int64 // denormalized from the catalog at write time; never authoritative
	Status    Status
	Notes     string
	CheckedAt time.Time
}

// LogEvent is one immutable write attempt. Events are appended on every
// submission and never modified or deleted. CreatedAt is not guaranteed
// monotonic across writers (clock skew), so readers sort explicitly by
// (CreatedAt, ID).
type LogEvent struct {
	ID        int64 // storage sequence; total-order tiebreak
	Key       Key
	UserID    int64
	SystemID  int64
	Status    Status
	Notes     string
	Action    Action
	CreatedAt time.Time
}
