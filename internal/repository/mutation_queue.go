package repository

import (
	"context"

	"github.com/meanly/wordtrack/internal/entity"
)

// MaxRetries bounds sync attempts per queued mutation; one more failure moves
// the entry to the dead-letter store.
const MaxRetries = 3

// MutationQueueRepository is the durable, ordered log of write intents waiting
// for remote synchronization.
//
// Enqueue coalesces per (user, item): when a mutation for the same item is
// already queued, the new entry replaces it (latest type and payload win,
// retry count resets) and keeps the earliest CreatedAt so replay order against
// other items' mutations is preserved. An unsave supersedes whatever was
// queued before it.
type MutationQueueRepository interface {
	Enqueue(ctx context.Context, m *entity.QueuedMutation) (*entity.QueuedMutation, error)
	// ListPending returns queued mutations ordered by CreatedAt ascending;
	// the synchronizer must replay in this order.
	ListPending(ctx context.Context, userID string) ([]*entity.QueuedMutation, error)
	DequeueConfirmed(ctx context.Context, id string) error
	// MarkFailed increments the retry count; past MaxRetries the entry is
	// moved to the dead-letter store and deadLettered is true.
	MarkFailed(ctx context.Context, id, reason string) (deadLettered bool, err error)
	ListDeadLetters(ctx context.Context, userID string) ([]*entity.DeadLetter, error)
	PendingCount(ctx context.Context, userID string) (int, error)
}
