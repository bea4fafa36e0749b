package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/repository"
)

func newTestSyncUsecase(store *fakeRemoteStore, probe *fakeProbe) (*syncUsecase, *fakeProgressRepo, *fakeMutationQueue) {
	records := newFakeProgressRepo()
	queue := newFakeMutationQueue()
	u := &syncUsecase{
		queue:       queue,
		records:     records,
		store:       store,
		probe:       probe,
		callTimeout: time.Second,
		clock:       tickingClock(testNow),
		logger:      quietLogger(),
	}
	return u, records, queue
}

func queuedMutation(id string, mt entity.MutationType, itemID string, createdAt time.Time) *entity.QueuedMutation {
	rec := entity.NewProgressRecord("rec-"+itemID, "user-1", itemID, createdAt)
	rec.SyncState = entity.SyncStatePendingCreate
	return &entity.QueuedMutation{
		ID:        id,
		Type:      mt,
		UserID:    "user-1",
		ItemID:    itemID,
		Record:    *rec,
		CreatedAt: createdAt,
	}
}

func TestSync_FailsFastWhenOffline(t *testing.T) {
	u, _, _ := newTestSyncUsecase(newFakeRemoteStore(), &fakeProbe{online: false})

	if _, err := u.Sync(context.Background(), "user-1"); !errors.Is(err, entity.ErrOffline) {
		t.Fatalf("err = %v, want offline", err)
	}
}

func TestSync_ReplaysInCreationOrder(t *testing.T) {
	store := newFakeRemoteStore()
	u, _, queue := newTestSyncUsecase(store, &fakeProbe{online: true})
	ctx := context.Background()

	// Enqueued out of creation order on purpose.
	for _, m := range []*entity.QueuedMutation{
		queuedMutation("m-3", entity.MutationRecordPractice, "item-3", testNow.Add(3*time.Second)),
		queuedMutation("m-1", entity.MutationSave, "item-1", testNow.Add(1*time.Second)),
		queuedMutation("m-2", entity.MutationUnsave, "item-2", testNow.Add(2*time.Second)),
	} {
		if _, err := queue.Enqueue(ctx, m); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}

	report, err := u.Sync(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if report.Applied != 3 {
		t.Fatalf("applied = %d, want 3", report.Applied)
	}

	want := []storeCall{
		{op: "upsert", itemID: "item-1"},
		{op: "delete", itemID: "item-2"},
		{op: "upsert", itemID: "item-3"},
	}
	if len(store.calls) != len(want) {
		t.Fatalf("calls = %+v, want %+v", store.calls, want)
	}
	for i, call := range want {
		if store.calls[i] != call {
			t.Fatalf("call %d = %+v, want %+v", i, store.calls[i], call)
		}
	}

	if count, _ := queue.PendingCount(ctx, "user-1"); count != 0 {
		t.Fatalf("pending after sync = %d, want 0", count)
	}
}

func TestSync_MarksLocalRecordSynced(t *testing.T) {
	store := newFakeRemoteStore()
	u, records, queue := newTestSyncUsecase(store, &fakeProbe{online: true})
	ctx := context.Background()

	mutation := queuedMutation("m-1", entity.MutationSave, "item-1", testNow)
	if _, err := records.Create(ctx, &mutation.Record); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := queue.Enqueue(ctx, mutation); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := u.Sync(ctx, "user-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	rec, err := records.GetByItem(ctx, "user-1", "item-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.SyncState != entity.SyncStateSynced {
		t.Fatalf("sync state = %s, want synced", rec.SyncState)
	}
}

func TestSync_ConflictResolvedDeterministically(t *testing.T) {
	store := newFakeRemoteStore()
	u, records, queue := newTestSyncUsecase(store, &fakeProbe{online: true})
	ctx := context.Background()

	mutation := queuedMutation("m-1", entity.MutationUpdateNotes, "item-1", testNow)
	mutation.Record.Notes = "client note"
	mutation.Record.IsFavorite = true
	if _, err := records.Create(ctx, &mutation.Record); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := queue.Enqueue(ctx, mutation); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	serverDue := testNow.Add(72 * time.Hour)
	serverPracticed := testNow.Add(-time.Hour)
	server := mutation.Record
	server.Strength = entity.StrengthFamiliar
	server.PracticeCount = 6
	server.CorrectCount = 5
	server.LastPracticedAt = &serverPracticed
	server.NextDueAt = &serverDue
	server.Notes = "server note"
	server.IsFavorite = false
	store.scriptResponses("item-1", &entity.ConflictError{Server: server})

	report, err := u.Sync(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if report.Applied != 1 || report.Conflicts != 1 {
		t.Fatalf("report = %+v, want one applied conflict", report)
	}

	// First push conflicts, the merged record is pushed once more.
	if len(store.calls) != 2 {
		t.Fatalf("store calls = %d, want 2", len(store.calls))
	}

	rec, err := records.GetByItem(ctx, "user-1", "item-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Strength != entity.StrengthFamiliar || rec.PracticeCount != 6 {
		t.Fatalf("server progress facts lost: %+v", rec)
	}
	if rec.Notes != "client note" || !rec.IsFavorite {
		t.Fatalf("client edits lost: %+v", rec)
	}
	if rec.SyncState != entity.SyncStateSynced {
		t.Fatalf("sync state = %s, want synced", rec.SyncState)
	}
}

func TestSync_TransientFailureDoesNotBlockBatch(t *testing.T) {
	store := newFakeRemoteStore()
	u, _, queue := newTestSyncUsecase(store, &fakeProbe{online: true})
	ctx := context.Background()

	failing := queuedMutation("m-1", entity.MutationSave, "item-1", testNow.Add(time.Second))
	healthy := queuedMutation("m-2", entity.MutationSave, "item-2", testNow.Add(2*time.Second))
	for _, m := range []*entity.QueuedMutation{failing, healthy} {
		if _, err := queue.Enqueue(ctx, m); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	store.scriptResponses("item-1", fmt.Errorf("%w: status 503", entity.ErrRemoteTransient))

	report, err := u.Sync(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if report.Applied != 1 || report.Failed != 1 {
		t.Fatalf("report = %+v, want one applied and one failed", report)
	}

	pending, _ := queue.ListPending(ctx, "user-1")
	if len(pending) != 1 || pending[0].ID != "m-1" {
		t.Fatalf("pending = %+v, want the failed mutation retained", pending)
	}
	if pending[0].RetryCount != 1 {
		t.Fatalf("retry count = %d, want 1", pending[0].RetryCount)
	}
}

func TestSync_DeadLettersAfterExhaustedRetries(t *testing.T) {
	store := newFakeRemoteStore()
	u, _, queue := newTestSyncUsecase(store, &fakeProbe{online: true})
	ctx := context.Background()

	mutation := queuedMutation("m-1", entity.MutationSave, "item-1", testNow)
	if _, err := queue.Enqueue(ctx, mutation); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for i := 0; i <= repository.MaxRetries; i++ {
		store.scriptResponses("item-1", fmt.Errorf("%w: status 503", entity.ErrRemoteTransient))
	}

	var lastReport *entity.SyncReport
	for attempt := 0; attempt <= repository.MaxRetries; attempt++ {
		report, err := u.Sync(ctx, "user-1")
		if err != nil {
			t.Fatalf("attempt %d: unexpected err: %v", attempt, err)
		}
		lastReport = report
	}

	if len(lastReport.DeadLetters) != 1 {
		t.Fatalf("dead letters = %d, want exactly 1", len(lastReport.DeadLetters))
	}
	if lastReport.DeadLetters[0].Mutation.ID != "m-1" {
		t.Fatalf("unexpected dead letter: %+v", lastReport.DeadLetters[0])
	}
	if count, _ := queue.PendingCount(ctx, "user-1"); count != 0 {
		t.Fatalf("pending = %d, want 0 after dead-lettering", count)
	}
	deadLetters, _ := queue.ListDeadLetters(ctx, "user-1")
	if len(deadLetters) != 1 {
		t.Fatalf("stored dead letters = %d, want 1", len(deadLetters))
	}
}

func TestSync_CancellationKeepsQueueConsistent(t *testing.T) {
	store := newFakeRemoteStore()
	u, _, queue := newTestSyncUsecase(store, &fakeProbe{online: true})

	first := queuedMutation("m-1", entity.MutationSave, "item-1", testNow.Add(time.Second))
	second := queuedMutation("m-2", entity.MutationSave, "item-2", testNow.Add(2*time.Second))
	ctx := context.Background()
	for _, m := range []*entity.QueuedMutation{first, second} {
		if _, err := queue.Enqueue(ctx, m); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	// Cancel as soon as the first remote call lands.
	u.store = callbackStore{store: store, onCall: cancel}

	report, err := u.Sync(cancelCtx, "user-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want canceled", err)
	}
	if report.Applied != 1 {
		t.Fatalf("applied = %d, want 1 before cancellation", report.Applied)
	}

	pending, _ := queue.ListPending(ctx, "user-1")
	if len(pending) != 1 || pending[0].ID != "m-2" {
		t.Fatalf("pending = %+v, want the unprocessed mutation retained", pending)
	}
}

func TestSync_RejectsOverlappingRuns(t *testing.T) {
	u, _, _ := newTestSyncUsecase(newFakeRemoteStore(), &fakeProbe{online: true})

	u.running.Store(true)
	if _, err := u.Sync(context.Background(), "user-1"); !errors.Is(err, entity.ErrSyncInProgress) {
		t.Fatalf("err = %v, want sync in progress", err)
	}
}

// callbackStore fires onCall after each remote operation; used to trigger
// cancellation at a precise point in a sync run.
type callbackStore struct {
	store  *fakeRemoteStore
	onCall func()
}

func (s callbackStore) UpsertProgress(ctx context.Context, rec *entity.ProgressRecord) error {
	err := s.store.UpsertProgress(ctx, rec)
	s.onCall()
	return err
}

func (s callbackStore) DeleteProgress(ctx context.Context, userID, itemID string) error {
	err := s.store.DeleteProgress(ctx, userID, itemID)
	s.onCall()
	return err
}
