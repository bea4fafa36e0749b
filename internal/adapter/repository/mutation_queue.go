package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/infrastructure/database/types"
	"github.com/meanly/wordtrack/internal/repository"
)

type mutationRow struct {
	ID           string                 `db:"id"`
	MutationType string                 `db:"mutation_type"`
	UserID       string                 `db:"user_id"`
	ItemID       string                 `db:"item_id"`
	Payload      types.ProgressSnapshot `db:"payload"`
	CreatedAt    time.Time              `db:"created_at"`
	RetryCount   int                    `db:"retry_count"`
}

func (r mutationRow) mutation() *entity.QueuedMutation {
	return &entity.QueuedMutation{
		ID:         r.ID,
		Type:       entity.MutationType(r.MutationType),
		UserID:     r.UserID,
		ItemID:     r.ItemID,
		Record:     r.Payload.Record(),
		CreatedAt:  r.CreatedAt,
		RetryCount: r.RetryCount,
	}
}

type deadLetterRow struct {
	mutationRow
	Reason   string    `db:"reason"`
	FailedAt time.Time `db:"failed_at"`
}

// NewMutationQueueRepository returns the sqlx-backed offline mutation queue.
func NewMutationQueueRepository(db *sqlx.DB) repository.MutationQueueRepository {
	return &mutationQueueRepository{db: db, clock: time.Now}
}

type mutationQueueRepository struct {
	db    *sqlx.DB
	clock func() time.Time
}

// Enqueue inserts the mutation or, when one is already queued for the same
// (user, item), replaces it in place: latest type and payload win, the retry
// budget resets, and the original created_at is kept so replay order against
// other items is unchanged.
func (r *mutationQueueRepository) Enqueue(ctx context.Context, m *entity.QueuedMutation) (*entity.QueuedMutation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("enqueue mutation: %w", err)
	}
	defer tx.Rollback()

	var existing mutationRow
	query := tx.Rebind(`SELECT * FROM mutation_queue WHERE user_id = ? AND item_id = ?`)
	err = tx.GetContext(ctx, &existing, query, m.UserID, m.ItemID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := tx.Rebind(`
			INSERT INTO mutation_queue (id, mutation_type, user_id, item_id, payload, created_at, retry_count)
			VALUES (?, ?, ?, ?, ?, ?, 0)`)
		if _, err := tx.ExecContext(ctx, insert,
			m.ID, string(m.Type), m.UserID, m.ItemID,
			types.SnapshotFromRecord(m.Record), m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("enqueue mutation: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("enqueue mutation: %w", err)
		}
		queued := *m
		queued.RetryCount = 0
		return &queued, nil
	case err != nil:
		return nil, fmt.Errorf("enqueue mutation: %w", err)
	}

	update := tx.Rebind(`
		UPDATE mutation_queue SET mutation_type = ?, payload = ?, retry_count = 0
		WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, update,
		string(m.Type), types.SnapshotFromRecord(m.Record), existing.ID,
	); err != nil {
		return nil, fmt.Errorf("coalesce mutation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("coalesce mutation: %w", err)
	}

	coalesced := *m
	coalesced.ID = existing.ID
	coalesced.CreatedAt = existing.CreatedAt
	coalesced.RetryCount = 0
	return &coalesced, nil
}

func (r *mutationQueueRepository) ListPending(ctx context.Context, userID string) ([]*entity.QueuedMutation, error) {
	var rows []mutationRow
	query := r.db.Rebind(`SELECT * FROM mutation_queue WHERE user_id = ? ORDER BY created_at ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list pending mutations: %w", err)
	}
	mutations := make([]*entity.QueuedMutation, 0, len(rows))
	for _, row := range rows {
		mutations = append(mutations, row.mutation())
	}
	return mutations, nil
}

func (r *mutationQueueRepository) DequeueConfirmed(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM mutation_queue WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("dequeue mutation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("dequeue mutation: %w", err)
	}
	if affected == 0 {
		return entity.ErrMutationNotFound
	}
	return nil
}

// MarkFailed increments the retry count; an entry past the retry budget is
// moved to dead_letters inside the same transaction so it is never lost
// between the two tables.
func (r *mutationQueueRepository) MarkFailed(ctx context.Context, id, reason string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("mark mutation failed: %w", err)
	}
	defer tx.Rollback()

	var row mutationRow
	query := tx.Rebind(`SELECT * FROM mutation_queue WHERE id = ?`)
	if err := tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, entity.ErrMutationNotFound
		}
		return false, fmt.Errorf("mark mutation failed: %w", err)
	}

	row.RetryCount++
	if row.RetryCount <= repository.MaxRetries {
		update := tx.Rebind(`UPDATE mutation_queue SET retry_count = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, update, row.RetryCount, id); err != nil {
			return false, fmt.Errorf("mark mutation failed: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("mark mutation failed: %w", err)
		}
		return false, nil
	}

	insert := tx.Rebind(`
		INSERT INTO dead_letters (id, mutation_type, user_id, item_id, payload, created_at, retry_count, reason, failed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert,
		row.ID, row.MutationType, row.UserID, row.ItemID, row.Payload,
		row.CreatedAt, row.RetryCount, reason, r.clock(),
	); err != nil {
		return false, fmt.Errorf("dead-letter mutation: %w", err)
	}
	remove := tx.Rebind(`DELETE FROM mutation_queue WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, remove, id); err != nil {
		return false, fmt.Errorf("dead-letter mutation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("dead-letter mutation: %w", err)
	}
	return true, nil
}

func (r *mutationQueueRepository) ListDeadLetters(ctx context.Context, userID string) ([]*entity.DeadLetter, error) {
	var rows []deadLetterRow
	query := r.db.Rebind(`SELECT * FROM dead_letters WHERE user_id = ? ORDER BY failed_at ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	letters := make([]*entity.DeadLetter, 0, len(rows))
	for _, row := range rows {
		letters = append(letters, &entity.DeadLetter{
			Mutation: *row.mutation(),
			Reason:   row.Reason,
			FailedAt: row.FailedAt,
		})
	}
	return letters, nil
}

func (r *mutationQueueRepository) PendingCount(ctx context.Context, userID string) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM mutation_queue WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count pending mutations: %w", err)
	}
	return count, nil
}
