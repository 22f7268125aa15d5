package models

import "time"

// FailureSummary describes one key whose day ended in an unresolved FAIL,
// derived by replaying the key's log events in order.
type FailureSummary struct {
	Key         Key
	SystemID    int64
	SystemName  string // catalog enrichment for console display
	ItemName    string
	UserID      int64     // actor of the first FAIL
	FirstFailAt time.Time // earliest FAIL event of the day
	Notes       string    // last FAIL's notes, falling back to the first FAIL's
	Resolved    bool      // always false for keys ending FAIL; kept for the contract
}

// UncheckedItem is an active catalog item with no record for a day and
// environment. Absence of any record is not a ledger state; it is derived by
// subtracting the day's records from the active catalog.
type UncheckedItem struct {
	CheckItemID int64
	SystemID    int64
	ItemName    string
	Environment Environment
}

// ConsistencyReport is the outcome of comparing a materialized record against
// the chronologically-last log event for the same key. Divergence is data,
// not an error: the verifier never repairs.
type ConsistencyReport struct {
	Key        Key
	Consistent bool
	Issues     []string
}

// DayStats aggregates one day's checked and unchecked counts for the console.
type DayStats struct {
	Pass      int
	Fail      int
	Unchecked int
}
