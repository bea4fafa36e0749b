package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/repository"
	"github.com/meanly/wordtrack/internal/srs"
)

// SavedSort orders a saved-words listing.
type SavedSort string

const (
	SortSavedAtDesc   SavedSort = "saved_at_desc"
	SortSavedAtAsc    SavedSort = "saved_at_asc"
	SortStrength      SavedSort = "strength"
	SortLastPracticed SavedSort = "last_practiced"
)

// ListSavedQuery filters and orders a user's saved records.
type ListSavedQuery struct {
	UserID       string
	Strength     entity.Strength
	FavoriteOnly bool
	Search       string
	Sort         SavedSort
}

// ProgressUsecase encapsulates business logic for a user's saved vocabulary
// progress. Every write is optimistic: it lands in the local store marked
// pending and a mutation is queued; only the synchronizer talks to the remote.
type ProgressUsecase interface {
	SaveItem(ctx context.Context, userID, itemID string) (*entity.ProgressRecord, error)
	UnsaveItem(ctx context.Context, userID, itemID string) error
	UpdateNotes(ctx context.Context, userID, itemID, notes string) (*entity.ProgressRecord, error)
	SetFavorite(ctx context.Context, userID, itemID string, favorite bool) (*entity.ProgressRecord, error)
	RecordPractice(ctx context.Context, userID, itemID string, isCorrect bool) (*entity.ProgressRecord, error)
	ListSaved(ctx context.Context, query ListSavedQuery) ([]*entity.ProgressRecord, error)
	PracticeQueue(ctx context.Context, userID string, limit int) ([]*entity.VocabularyItem, error)
	Stats(ctx context.Context, userID string) (*entity.ProgressStats, error)
}

// NewProgressUsecase wires the repositories with default id and clock sources.
func NewProgressUsecase(records repository.ProgressRepository, items repository.ItemRepository, queue repository.MutationQueueRepository) ProgressUsecase {
	return &progressUsecase{
		records: records,
		items:   items,
		queue:   queue,
		clock:   time.Now,
		newID:   uuid.NewString,
	}
}

type progressUsecase struct {
	records repository.ProgressRepository
	items   repository.ItemRepository
	queue   repository.MutationQueueRepository
	clock   func() time.Time
	newID   func() string
}

func (u *progressUsecase) SaveItem(ctx context.Context, userID, itemID string) (*entity.ProgressRecord, error) {
	if _, err := u.items.Get(ctx, itemID); err != nil {
		return nil, err
	}

	existing, err := u.records.GetByItem(ctx, userID, itemID)
	if err == nil {
		// Saving twice is a no-op, matching the optimistic UI.
		return existing, nil
	}
	if !errors.Is(err, entity.ErrProgressNotFound) {
		return nil, err
	}

	rec := entity.NewProgressRecord(u.newID(), userID, itemID, u.clock())
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	created, err := u.records.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := u.enqueue(ctx, entity.MutationSave, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (u *progressUsecase) UnsaveItem(ctx context.Context, userID, itemID string) error {
	rec, err := u.records.GetByItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	rec.SyncState = entity.SyncStatePendingDelete
	if err := u.records.Delete(ctx, userID, itemID); err != nil {
		return err
	}
	return u.enqueue(ctx, entity.MutationUnsave, rec)
}

func (u *progressUsecase) UpdateNotes(ctx context.Context, userID, itemID, notes string) (*entity.ProgressRecord, error) {
	return u.mutate(ctx, userID, itemID, func(rec *entity.ProgressRecord) {
		rec.Notes = notes
	})
}

func (u *progressUsecase) SetFavorite(ctx context.Context, userID, itemID string, favorite bool) (*entity.ProgressRecord, error) {
	return u.mutate(ctx, userID, itemID, func(rec *entity.ProgressRecord) {
		rec.IsFavorite = favorite
	})
}

// RecordPractice advances the strength state machine for one attempt. The
// record is created on the fly when the item was practiced before being saved.
func (u *progressUsecase) RecordPractice(ctx context.Context, userID, itemID string, isCorrect bool) (*entity.ProgressRecord, error) {
	rec, err := u.records.GetByItem(ctx, userID, itemID)
	if errors.Is(err, entity.ErrProgressNotFound) {
		rec, err = u.SaveItem(ctx, userID, itemID)
	}
	if err != nil {
		return nil, err
	}

	advanced := srs.Advance(*rec, isCorrect, u.clock())
	markPending(&advanced)
	if err := advanced.Validate(); err != nil {
		return nil, err
	}
	updated, err := u.records.Update(ctx, &advanced)
	if err != nil {
		return nil, err
	}
	if err := u.enqueue(ctx, entity.MutationRecordPractice, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (u *progressUsecase) ListSaved(ctx context.Context, query ListSavedQuery) ([]*entity.ProgressRecord, error) {
	records, err := u.records.List(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	if query.Strength != "" {
		records = lo.Filter(records, func(r *entity.ProgressRecord, _ int) bool {
			return r.Strength == query.Strength
		})
	}
	if query.FavoriteOnly {
		records = lo.Filter(records, func(r *entity.ProgressRecord, _ int) bool {
			return r.IsFavorite
		})
	}
	if search := strings.ToLower(strings.TrimSpace(query.Search)); search != "" {
		records = lo.Filter(records, func(r *entity.ProgressRecord, _ int) bool {
			if strings.Contains(strings.ToLower(r.Notes), search) {
				return true
			}
			item, err := u.items.Get(ctx, r.ItemID)
			if err != nil {
				return false
			}
			return strings.Contains(strings.ToLower(item.Word), search) ||
				strings.Contains(strings.ToLower(item.Definition), search)
		})
	}

	sortSaved(records, query.Sort)
	return records, nil
}

// PracticeQueue assembles the next session's items: due records plus weak
// ones, oldest due first, skipping records whose item is no longer cached.
func (u *progressUsecase) PracticeQueue(ctx context.Context, userID string, limit int) ([]*entity.VocabularyItem, error) {
	due, err := u.records.ListDue(ctx, userID, u.clock(), limit)
	if err != nil {
		return nil, err
	}

	items := make([]*entity.VocabularyItem, 0, len(due))
	for _, rec := range due {
		item, err := u.items.Get(ctx, rec.ItemID)
		if errors.Is(err, entity.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (u *progressUsecase) Stats(ctx context.Context, userID string) (*entity.ProgressStats, error) {
	records, err := u.records.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := u.queue.PendingCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	deadLetters, err := u.queue.ListDeadLetters(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	stats := &entity.ProgressStats{
		Total:       len(records),
		ByStrength:  lo.CountValuesBy(records, func(r *entity.ProgressRecord) entity.Strength { return r.Strength }),
		DueNow:      lo.CountBy(records, func(r *entity.ProgressRecord) bool { return r.Due(now) }),
		Favorites:   lo.CountBy(records, func(r *entity.ProgressRecord) bool { return r.IsFavorite }),
		Pending:     pending,
		DeadLetters: len(deadLetters),
	}
	return stats, nil
}

func (u *progressUsecase) mutate(ctx context.Context, userID, itemID string, apply func(*entity.ProgressRecord)) (*entity.ProgressRecord, error) {
	rec, err := u.records.GetByItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	apply(rec)
	markPending(rec)
	updated, err := u.records.Update(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := u.enqueue(ctx, entity.MutationUpdateNotes, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (u *progressUsecase) enqueue(ctx context.Context, mt entity.MutationType, rec *entity.ProgressRecord) error {
	_, err := u.queue.Enqueue(ctx, &entity.QueuedMutation{
		ID:        u.newID(),
		Type:      mt,
		UserID:    rec.UserID,
		ItemID:    rec.ItemID,
		Record:    *rec,
		CreatedAt: u.clock(),
	})
	return err
}

// markPending keeps a record that has never reached the remote in
// pending_create; anything else becomes pending_update.
func markPending(rec *entity.ProgressRecord) {
	if rec.SyncState != entity.SyncStatePendingCreate {
		rec.SyncState = entity.SyncStatePendingUpdate
	}
}

func sortSaved(records []*entity.ProgressRecord, order SavedSort) {
	switch order {
	case SortSavedAtAsc:
		sort.SliceStable(records, func(i, j int) bool { return records[i].SavedAt.Before(records[j].SavedAt) })
	case SortStrength:
		sort.SliceStable(records, func(i, j int) bool { return records[i].Strength.Rank() > records[j].Strength.Rank() })
	case SortLastPracticed:
		sort.SliceStable(records, func(i, j int) bool {
			switch {
			case records[i].LastPracticedAt == nil:
				return false
			case records[j].LastPracticedAt == nil:
				return true
			default:
				return records[i].LastPracticedAt.After(*records[j].LastPracticedAt)
			}
		})
	default:
		sort.SliceStable(records, func(i, j int) bool { return records[i].SavedAt.After(records[j].SavedAt) })
	}
}
