package repository

import (
	"context"
	"time"

	"github.com/meanly/wordtrack/internal/entity"
)

// ProgressRepository abstracts local persistence for progress records to keep
// usecases storage agnostic. Implementations return defensive copies.
type ProgressRepository interface {
	Create(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error)
	Update(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error)
	GetByItem(ctx context.Context, userID, itemID string) (*entity.ProgressRecord, error)
	List(ctx context.Context, userID string) ([]*entity.ProgressRecord, error)
	// ListDue returns records eligible for practice: due at now, never
	// scheduled, or still weak (new/learning), ordered by due time with
	// unscheduled records first, capped at limit.
	ListDue(ctx context.Context, userID string, now time.Time, limit int) ([]*entity.ProgressRecord, error)
	Delete(ctx context.Context, userID, itemID string) error
}

// ItemRepository reads the locally cached vocabulary content. Items are owned
// by the content collaborator; this core only ever writes them through import.
type ItemRepository interface {
	Upsert(ctx context.Context, item *entity.VocabularyItem) error
	Get(ctx context.Context, id string) (*entity.VocabularyItem, error)
	List(ctx context.Context) ([]*entity.VocabularyItem, error)
}
