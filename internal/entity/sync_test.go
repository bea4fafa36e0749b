package entity

import (
	"testing"
	"time"
)

func TestResolveConflict_FieldPolicy(t *testing.T) {
	localDue := testNow.Add(4 * time.Hour)
	serverDue := testNow.Add(72 * time.Hour)
	serverPracticed := testNow.Add(-time.Hour)

	local := ProgressRecord{
		ID:            "rec-1",
		UserID:        "user-1",
		ItemID:        "item-1",
		Strength:      StrengthLearning,
		PracticeCount: 3,
		CorrectCount:  2,
		NextDueAt:     &localDue,
		Notes:         "my mnemonic",
		IsFavorite:    true,
		SyncState:     SyncStatePendingUpdate,
	}
	server := ProgressRecord{
		ID:              "rec-1",
		UserID:          "user-1",
		ItemID:          "item-1",
		Strength:        StrengthFamiliar,
		PracticeCount:   5,
		CorrectCount:    4,
		LastPracticedAt: &serverPracticed,
		NextDueAt:       &serverDue,
		Notes:           "stale server note",
		IsFavorite:      false,
		SyncState:       SyncStateSynced,
	}

	merged := ResolveConflict(local, server)

	// Server wins the monotonically-derived progress facts.
	if merged.Strength != StrengthFamiliar {
		t.Fatalf("strength = %s, want server's familiar", merged.Strength)
	}
	if merged.PracticeCount != 5 || merged.CorrectCount != 4 {
		t.Fatalf("counts = %d/%d, want server's 4/5", merged.CorrectCount, merged.PracticeCount)
	}
	if !merged.NextDueAt.Equal(serverDue) {
		t.Fatalf("next due = %v, want server's %v", merged.NextDueAt, serverDue)
	}

	// Client wins the subjective user edits.
	if merged.Notes != "my mnemonic" {
		t.Fatalf("notes = %q, want client's", merged.Notes)
	}
	if !merged.IsFavorite {
		t.Fatal("favorite flag lost to server")
	}
	if merged.SyncState != SyncStatePendingUpdate {
		t.Fatalf("sync state = %s, want client's pending_update", merged.SyncState)
	}
}

func TestResolveConflict_Deterministic(t *testing.T) {
	local := *NewProgressRecord("rec-1", "user-1", "item-1", testNow)
	server := *NewProgressRecord("rec-1", "user-1", "item-1", testNow.Add(-time.Hour))
	server.SyncState = SyncStateSynced

	first := ResolveConflict(local, server)
	second := ResolveConflict(local, server)
	if first != second {
		t.Fatalf("merge diverged: %+v vs %+v", first, second)
	}
}
