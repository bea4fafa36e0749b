package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/repository"
)

// RemoteStore is the backend progress API drained during sync. External
// collaborator. Calls return nil on acceptance, *entity.ConflictError when the
// server holds newer state, or an error wrapping entity.ErrRemoteTransient for
// timeouts and server faults.
type RemoteStore interface {
	UpsertProgress(ctx context.Context, rec *entity.ProgressRecord) error
	DeleteProgress(ctx context.Context, userID, itemID string) error
}

// ConnectivityProbe answers whether the remote is reachable at all; consulted
// once before a sync run starts.
type ConnectivityProbe interface {
	IsOnline(ctx context.Context) bool
}

// SyncUsecase drains the offline mutation queue against the remote store.
type SyncUsecase interface {
	Sync(ctx context.Context, userID string) (*entity.SyncReport, error)
}

// NewSyncUsecase wires the synchronizer dependencies.
func NewSyncUsecase(queue repository.MutationQueueRepository, records repository.ProgressRepository, store RemoteStore, probe ConnectivityProbe, callTimeout time.Duration, logger *logrus.Logger) SyncUsecase {
	return &syncUsecase{
		queue:       queue,
		records:     records,
		store:       store,
		probe:       probe,
		callTimeout: callTimeout,
		clock:       time.Now,
		logger:      logger,
	}
}

type syncUsecase struct {
	queue       repository.MutationQueueRepository
	records     repository.ProgressRepository
	store       RemoteStore
	probe       ConnectivityProbe
	callTimeout time.Duration
	clock       func() time.Time
	logger      *logrus.Logger
	running     atomic.Bool
}

// Sync replays pending mutations in creation order. One failing mutation is
// marked and skipped, never blocking the rest of the batch. Cancellation
// between entries leaves the queue consistent: confirmed entries stay
// dequeued, the remainder stays queued for the next run.
func (u *syncUsecase) Sync(ctx context.Context, userID string) (*entity.SyncReport, error) {
	if !u.running.CompareAndSwap(false, true) {
		return nil, entity.ErrSyncInProgress
	}
	defer u.running.Store(false)

	if !u.probe.IsOnline(ctx) {
		return nil, entity.ErrOffline
	}

	// Snapshot so entries enqueued mid-run wait for the next sync.
	pending, err := u.queue.ListPending(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &entity.SyncReport{StartedAt: u.clock()}
	for _, mutation := range pending {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = u.clock()
			return report, err
		}
		u.apply(ctx, mutation, report)
	}
	report.FinishedAt = u.clock()

	u.logger.WithFields(logrus.Fields{
		"applied":      report.Applied,
		"conflicts":    report.Conflicts,
		"failed":       report.Failed,
		"dead_letters": len(report.DeadLetters),
	}).Info("sync finished")
	return report, nil
}

func (u *syncUsecase) apply(ctx context.Context, mutation *entity.QueuedMutation, report *entity.SyncReport) {
	callCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
	defer cancel()

	var (
		conflicted bool
		err        error
	)
	switch mutation.Type {
	case entity.MutationUnsave:
		err = u.store.DeleteProgress(callCtx, mutation.UserID, mutation.ItemID)
	default:
		conflicted, err = u.push(callCtx, mutation)
	}
	if err != nil {
		u.fail(ctx, mutation, err, report)
		return
	}

	// Bookkeeping for a remotely confirmed entry must finish even if the
	// caller cancelled mid-run, or the entry would replay next sync.
	ctx = context.WithoutCancel(ctx)
	if err := u.queue.DequeueConfirmed(ctx, mutation.ID); err != nil {
		u.logger.WithError(err).WithField("mutation_id", mutation.ID).Error("dequeue after confirm failed")
		return
	}
	report.Applied++
	if conflicted {
		report.Conflicts++
	}
	if mutation.Type != entity.MutationUnsave {
		u.markSynced(ctx, mutation)
	}
}

// push upserts the queued snapshot. A conflict is resolved deterministically
// (server wins progress facts, client wins notes and favorite), written back
// locally and re-pushed once; a second rejection counts as a failure.
func (u *syncUsecase) push(ctx context.Context, mutation *entity.QueuedMutation) (conflicted bool, err error) {
	rec := mutation.Record
	err = u.store.UpsertProgress(ctx, &rec)
	var conflict *entity.ConflictError
	if !errors.As(err, &conflict) {
		return false, err
	}

	merged := entity.ResolveConflict(mutation.Record, conflict.Server)
	if err := u.store.UpsertProgress(ctx, &merged); err != nil {
		return true, err
	}
	merged.SyncState = entity.SyncStateSynced
	if _, err := u.records.Update(ctx, &merged); err != nil && !errors.Is(err, entity.ErrProgressNotFound) {
		u.logger.WithError(err).WithField("item_id", mutation.ItemID).Warn("local write-back of merged record failed")
	}
	return true, nil
}

func (u *syncUsecase) markSynced(ctx context.Context, mutation *entity.QueuedMutation) {
	rec, err := u.records.GetByItem(ctx, mutation.UserID, mutation.ItemID)
	if err != nil {
		return
	}
	if !rec.Dirty() {
		return
	}
	rec.SyncState = entity.SyncStateSynced
	if _, err := u.records.Update(ctx, rec); err != nil {
		u.logger.WithError(err).WithField("item_id", mutation.ItemID).Warn("marking record synced failed")
	}
}

func (u *syncUsecase) fail(ctx context.Context, mutation *entity.QueuedMutation, cause error, report *entity.SyncReport) {
	deadLettered, err := u.queue.MarkFailed(ctx, mutation.ID, cause.Error())
	if err != nil {
		u.logger.WithError(err).WithField("mutation_id", mutation.ID).Error("marking mutation failed errored")
		report.Failed++
		return
	}
	if deadLettered {
		u.logger.WithFields(logrus.Fields{
			"mutation_id": mutation.ID,
			"type":        mutation.Type,
			"item_id":     mutation.ItemID,
		}).Warn("mutation exhausted retries, moved to dead letters")
		report.DeadLetters = append(report.DeadLetters, entity.DeadLetter{
			Mutation: *mutation,
			Reason:   cause.Error(),
			FailedAt: u.clock(),
		})
		return
	}
	u.logger.WithError(cause).WithField("mutation_id", mutation.ID).Warn("mutation sync failed, will retry")
	report.Failed++
}
