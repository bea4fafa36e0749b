package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meanly/wordtrack/internal/entity"
)

// ProgressSnapshot is the explicit serialized form of a progress record at
// the storage and wire boundary. Persistence and the remote store both speak
// this shape; the entity never marshals itself.
type ProgressSnapshot struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ItemID          string     `json:"item_id"`
	Strength        string     `json:"strength"`
	PracticeCount   int        `json:"practice_count"`
	CorrectCount    int        `json:"correct_count"`
	LastPracticedAt *time.Time `json:"last_practiced_at,omitempty"`
	NextDueAt       *time.Time `json:"next_due_at,omitempty"`
	SavedAt         time.Time  `json:"saved_at"`
	IsFavorite      bool       `json:"is_favorite"`
	Notes           string     `json:"notes,omitempty"`
	SyncState       string     `json:"sync_state"`
}

// SnapshotFromRecord serializes a record into its boundary form.
func SnapshotFromRecord(rec entity.ProgressRecord) ProgressSnapshot {
	return ProgressSnapshot{
		ID:              rec.ID,
		UserID:          rec.UserID,
		ItemID:          rec.ItemID,
		Strength:        string(rec.Strength),
		PracticeCount:   rec.PracticeCount,
		CorrectCount:    rec.CorrectCount,
		LastPracticedAt: rec.LastPracticedAt,
		NextDueAt:       rec.NextDueAt,
		SavedAt:         rec.SavedAt,
		IsFavorite:      rec.IsFavorite,
		Notes:           rec.Notes,
		SyncState:       string(rec.SyncState),
	}
}

// Record deserializes the snapshot back into the domain entity.
func (s ProgressSnapshot) Record() entity.ProgressRecord {
	return entity.ProgressRecord{
		ID:              s.ID,
		UserID:          s.UserID,
		ItemID:          s.ItemID,
		Strength:        entity.Strength(s.Strength),
		PracticeCount:   s.PracticeCount,
		CorrectCount:    s.CorrectCount,
		LastPracticedAt: s.LastPracticedAt,
		NextDueAt:       s.NextDueAt,
		SavedAt:         s.SavedAt,
		IsFavorite:      s.IsFavorite,
		Notes:           s.Notes,
		SyncState:       entity.SyncState(s.SyncState),
	}
}

// Scan implements sql.Scanner for ProgressSnapshot.
func (s *ProgressSnapshot) Scan(src any) error {
	if src == nil {
		*s = ProgressSnapshot{}
		return nil
	}
	switch data := src.(type) {
	case []byte:
		if len(data) == 0 {
			*s = ProgressSnapshot{}
			return nil
		}
		return json.Unmarshal(data, s)
	case string:
		if data == "" {
			*s = ProgressSnapshot{}
			return nil
		}
		return json.Unmarshal([]byte(data), s)
	default:
		return fmt.Errorf("ProgressSnapshot: unsupported src type %T", src)
	}
}

// Value implements driver.Valuer for ProgressSnapshot.
func (s ProgressSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}
