package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/repository"
)

type progressRow struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	ItemID          string     `db:"item_id"`
	Strength        string     `db:"strength"`
	PracticeCount   int        `db:"practice_count"`
	CorrectCount    int        `db:"correct_count"`
	LastPracticedAt *time.Time `db:"last_practiced_at"`
	NextDueAt       *time.Time `db:"next_due_at"`
	SavedAt         time.Time  `db:"saved_at"`
	IsFavorite      bool       `db:"is_favorite"`
	Notes           string     `db:"notes"`
	SyncState       string     `db:"sync_state"`
}

func rowFromRecord(rec *entity.ProgressRecord) progressRow {
	return progressRow{
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

func (r progressRow) record() *entity.ProgressRecord {
	return &entity.ProgressRecord{
		ID:              r.ID,
		UserID:          r.UserID,
		ItemID:          r.ItemID,
		Strength:        entity.Strength(r.Strength),
		PracticeCount:   r.PracticeCount,
		CorrectCount:    r.CorrectCount,
		LastPracticedAt: r.LastPracticedAt,
		NextDueAt:       r.NextDueAt,
		SavedAt:         r.SavedAt,
		IsFavorite:      r.IsFavorite,
		Notes:           r.Notes,
		SyncState:       entity.SyncState(r.SyncState),
	}
}

// NewProgressRepository returns the sqlx-backed progress store.
func NewProgressRepository(db *sqlx.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

type progressRepository struct {
	db *sqlx.DB
}

func (r *progressRepository) Create(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error) {
	row := rowFromRecord(rec)
	query := r.db.Rebind(`
		INSERT INTO progress_records (
			id, user_id, item_id, strength, practice_count, correct_count,
			last_practiced_at, next_due_at, saved_at, is_favorite, notes, sync_state
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.UserID, row.ItemID, row.Strength, row.PracticeCount, row.CorrectCount,
		row.LastPracticedAt, row.NextDueAt, row.SavedAt, row.IsFavorite, row.Notes, row.SyncState,
	)
	if err != nil {
		return nil, fmt.Errorf("create progress record: %w", err)
	}
	return rec.Clone(), nil
}

func (r *progressRepository) Update(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error) {
	row := rowFromRecord(rec)
	query := r.db.Rebind(`
		UPDATE progress_records SET
			strength = ?, practice_count = ?, correct_count = ?,
			last_practiced_at = ?, next_due_at = ?, is_favorite = ?, notes = ?, sync_state = ?
		WHERE user_id = ? AND item_id = ?`)
	result, err := r.db.ExecContext(ctx, query,
		row.Strength, row.PracticeCount, row.CorrectCount,
		row.LastPracticedAt, row.NextDueAt, row.IsFavorite, row.Notes, row.SyncState,
		row.UserID, row.ItemID,
	)
	if err != nil {
		return nil, fmt.Errorf("update progress record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update progress record: %w", err)
	}
	if affected == 0 {
		return nil, entity.ErrProgressNotFound
	}
	return rec.Clone(), nil
}

func (r *progressRepository) GetByItem(ctx context.Context, userID, itemID string) (*entity.ProgressRecord, error) {
	var row progressRow
	query := r.db.Rebind(`SELECT * FROM progress_records WHERE user_id = ? AND item_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress record: %w", err)
	}
	return row.record(), nil
}

func (r *progressRepository) List(ctx context.Context, userID string) ([]*entity.ProgressRecord, error) {
	var rows []progressRow
	query := r.db.Rebind(`SELECT * FROM progress_records WHERE user_id = ? ORDER BY saved_at DESC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list progress records: %w", err)
	}
	records := make([]*entity.ProgressRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (r *progressRepository) ListDue(ctx context.Context, userID string, now time.Time, limit int) ([]*entity.ProgressRecord, error) {
	var rows []progressRow
	query := r.db.Rebind(`
		SELECT * FROM progress_records
		WHERE user_id = ?
		  AND (next_due_at IS NULL OR next_due_at <= ? OR strength IN ('new', 'learning'))
		ORDER BY next_due_at IS NOT NULL, next_due_at ASC
		LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, userID, now, limit); err != nil {
		return nil, fmt.Errorf("list due progress records: %w", err)
	}
	records := make([]*entity.ProgressRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (r *progressRepository) Delete(ctx context.Context, userID, itemID string) error {
	query := r.db.Rebind(`DELETE FROM progress_records WHERE user_id = ? AND item_id = ?`)
	result, err := r.db.ExecContext(ctx, query, userID, itemID)
	if err != nil {
		return fmt.Errorf("delete progress record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete progress record: %w", err)
	}
	if affected == 0 {
		return entity.ErrProgressNotFound
	}
	return nil
}
