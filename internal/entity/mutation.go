package entity

import "time"

// MutationType names a write intent waiting for remote synchronization.
type MutationType string

const (
	MutationSave           MutationType = "save"
	MutationUnsave         MutationType = "unsave"
	MutationUpdateNotes    MutationType = "update_notes"
	MutationRecordPractice MutationType = "record_practice"
)

// Valid reports whether t is a recognized mutation type.
func (t MutationType) Valid() bool {
	switch t {
	case MutationSave, MutationUnsave, MutationUpdateNotes, MutationRecordPractice:
		return true
	}
	return false
}

// QueuedMutation is one entry in the offline mutation queue. Record carries
// the full local snapshot taken at enqueue time; for unsave it is zero and
// only ItemID matters. The queue holds at most one entry per (user, item):
// a newer mutation for the same item replaces the queued one, keeping the
// earliest CreatedAt so replay order against other items is preserved.
type QueuedMutation struct {
	ID         string
	Type       MutationType
	UserID     string
	ItemID     string
	Record     ProgressRecord
	CreatedAt  time.Time
	RetryCount int
}

// DeadLetter is a mutation removed from active retry after exhausting its
// attempts. It is kept for visibility, never silently dropped.
type DeadLetter struct {
	Mutation QueuedMutation
	Reason   string
	FailedAt time.Time
}
