package entity

import (
	"fmt"
	"time"
)

// Strength is the coarse proficiency tier for a single vocabulary item.
type Strength string

const (
	StrengthNew      Strength = "new"
	StrengthLearning Strength = "learning"
	StrengthFamiliar Strength = "familiar"
	StrengthMastered Strength = "mastered"
)

// Rank orders tiers: new < learning < familiar < mastered. Unknown tiers rank -1.
func (s Strength) Rank() int {
	switch s {
	case StrengthNew:
		return 0
	case StrengthLearning:
		return 1
	case StrengthFamiliar:
		return 2
	case StrengthMastered:
		return 3
	default:
		return -1
	}
}

// Valid reports whether s is a recognized tier.
func (s Strength) Valid() bool { return s.Rank() >= 0 }

// Strengths lists all tiers in ascending order.
func Strengths() []Strength {
	return []Strength{StrengthNew, StrengthLearning, StrengthFamiliar, StrengthMastered}
}

// SyncState tracks local-vs-remote divergence for a progress record.
type SyncState string

const (
	SyncStateSynced        SyncState = "synced"
	SyncStatePendingCreate SyncState = "pending_create"
	SyncStatePendingUpdate SyncState = "pending_update"
	SyncStatePendingDelete SyncState = "pending_delete"
)

// ProgressRecord is a user's learning record for one vocabulary item.
// Strength and NextDueAt change only through the state machine in
// internal/srs; Notes and IsFavorite change through direct user action.
type ProgressRecord struct {
	ID              string
	UserID          string
	ItemID          string
	Strength        Strength
	PracticeCount   int
	CorrectCount    int
	LastPracticedAt *time.Time
	NextDueAt       *time.Time
	SavedAt         time.Time
	IsFavorite      bool
	Notes           string
	SyncState       SyncState
}

// NewProgressRecord builds the record created when a user first saves an item.
func NewProgressRecord(id, userID, itemID string, now time.Time) *ProgressRecord {
	return &ProgressRecord{
		ID:        id,
		UserID:    userID,
		ItemID:    itemID,
		Strength:  StrengthNew,
		SavedAt:   now,
		SyncState: SyncStatePendingCreate,
	}
}

// Validate checks the record invariants. Violations are programmer or data
// errors and are never auto-corrected.
func (r *ProgressRecord) Validate() error {
	if !r.Strength.Valid() {
		return fmt.Errorf("%w: unknown strength %q", ErrInvariantViolation, r.Strength)
	}
	if r.PracticeCount < 0 || r.CorrectCount < 0 {
		return fmt.Errorf("%w: negative practice counters (%d/%d)", ErrInvariantViolation, r.CorrectCount, r.PracticeCount)
	}
	if r.CorrectCount > r.PracticeCount {
		return fmt.Errorf("%w: correct count %d exceeds practice count %d", ErrInvariantViolation, r.CorrectCount, r.PracticeCount)
	}
	if r.NextDueAt == nil && r.PracticeCount != 0 {
		return fmt.Errorf("%w: practiced record without a due time", ErrInvariantViolation)
	}
	if r.NextDueAt != nil && r.PracticeCount == 0 {
		return fmt.Errorf("%w: unpracticed record with a due time", ErrInvariantViolation)
	}
	return nil
}

// Due reports whether the record should be offered for practice at now.
// A record that has never been scheduled is immediately eligible.
func (r *ProgressRecord) Due(now time.Time) bool {
	if r.NextDueAt == nil {
		return true
	}
	return !now.Before(*r.NextDueAt)
}

// Dirty reports whether the record diverges from the remote store.
func (r *ProgressRecord) Dirty() bool { return r.SyncState != SyncStateSynced }

// Clone returns a deep copy of the record.
func (r *ProgressRecord) Clone() *ProgressRecord {
	copy := *r
	if r.LastPracticedAt != nil {
		t := *r.LastPracticedAt
		copy.LastPracticedAt = &t
	}
	if r.NextDueAt != nil {
		t := *r.NextDueAt
		copy.NextDueAt = &t
	}
	return &copy
}
