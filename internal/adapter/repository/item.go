package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/repository"
)

type itemRow struct {
	ID         string `db:"id"`
	Word       string `db:"word"`
	BaseWord   string `db:"base_word"`
	Definition string `db:"definition"`
	Level      string `db:"level"`
	Category   string `db:"category"`
}

func (r itemRow) item() *entity.VocabularyItem {
	return &entity.VocabularyItem{
		ID:         r.ID,
		Word:       r.Word,
		BaseWord:   r.BaseWord,
		Definition: r.Definition,
		Level:      r.Level,
		Category:   r.Category,
	}
}

// NewItemRepository returns the sqlx-backed vocabulary item cache.
func NewItemRepository(db *sqlx.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

type itemRepository struct {
	db *sqlx.DB
}

func (r *itemRepository) Upsert(ctx context.Context, item *entity.VocabularyItem) error {
	// Same ON CONFLICT syntax on sqlite and postgres.
	query := r.db.Rebind(`
		INSERT INTO vocabulary_items (id, word, base_word, definition, level, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			word = excluded.word,
			base_word = excluded.base_word,
			definition = excluded.definition,
			level = excluded.level,
			category = excluded.category`)
	if _, err := r.db.ExecContext(ctx, query,
		item.ID, item.Word, item.BaseWord, item.Definition, item.Level, item.Category,
	); err != nil {
		return fmt.Errorf("upsert vocabulary item: %w", err)
	}
	return nil
}

func (r *itemRepository) Get(ctx context.Context, id string) (*entity.VocabularyItem, error) {
	var row itemRow
	query := r.db.Rebind(`SELECT * FROM vocabulary_items WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrItemNotFound
		}
		return nil, fmt.Errorf("get vocabulary item: %w", err)
	}
	return row.item(), nil
}

func (r *itemRepository) List(ctx context.Context) ([]*entity.VocabularyItem, error) {
	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM vocabulary_items ORDER BY word ASC`); err != nil {
		return nil, fmt.Errorf("list vocabulary items: %w", err)
	}
	items := make([]*entity.VocabularyItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}
	return items, nil
}
