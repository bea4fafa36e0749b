package entity

import (
	"fmt"
	"time"
)

// SyncReport summarizes one synchronizer run over the offline queue.
type SyncReport struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	Applied     int
	Conflicts   int
	Failed      int
	DeadLetters []DeadLetter
}

// ConflictError is returned by the remote store when the server holds a newer
// record than the one being pushed. Server carries the remote state used for
// deterministic resolution.
type ConflictError struct {
	Server ProgressRecord
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("remote progress conflict for item %s", e.Server.ItemID)
}

// ResolveConflict merges a diverged local and server record. Progress facts
// (strength, counters, practice times) come from the server, which may have
// advanced them from a concurrent device; subjective user edits (notes,
// favorite) come from the client. Pure.
func ResolveConflict(local, server ProgressRecord) ProgressRecord {
	merged := server
	merged.Notes = local.Notes
	merged.IsFavorite = local.IsFavorite
	merged.SyncState = local.SyncState
	return merged
}

// ProgressStats is an aggregate view over a user's saved records.
type ProgressStats struct {
	Total       int
	ByStrength  map[Strength]int
	DueNow      int
	Favorites   int
	Pending     int
	DeadLetters int
}
