package importer

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/meanly/wordtrack/internal/entity"
)

type memItemRepo struct {
	mu    sync.Mutex
	items map[string]*entity.VocabularyItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[string]*entity.VocabularyItem)}
}

func (r *memItemRepo) Upsert(_ context.Context, item *entity.VocabularyItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *memItemRepo) Get(_ context.Context, id string) (*entity.VocabularyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrItemNotFound
	}
	stored := *item
	return &stored, nil
}

func (r *memItemRepo) List(_ context.Context) ([]*entity.VocabularyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.VocabularyItem, 0, len(r.items))
	for _, item := range r.items {
		stored := *item
		out = append(out, &stored)
	}
	return out, nil
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "words.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestImportFile(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"id", "word", "base word", "definition", "level", "category"},
		{"w-1", "Serendipity", "serendipity", "finding good things by chance", "C1", "abstract"},
		{"", "Running", "run", "moving fast on foot", "A2", "verbs"},
		{"w-3", "", "", "a row with no word", "B1", "broken"},
	})

	repo := newMemItemRepo()
	result, err := New(repo, DefaultConfig()).ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if result.TotalProcessed != 3 {
		t.Fatalf("processed = %d, want 3", result.TotalProcessed)
	}
	if result.Imported != 2 {
		t.Fatalf("imported = %d, want 2", result.Imported)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", result.Errors)
	}

	item, err := repo.Get(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("get imported item: %v", err)
	}
	if item.Word != "Serendipity" || item.BaseWord != "serendipity" || item.Level != "C1" {
		t.Fatalf("unexpected item: %+v", item)
	}

	// The row without an id still lands, under a generated one.
	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("stored = %d items, want 2", len(all))
	}
}

func TestImportFillsBaseWordFromWord(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"id", "word", "base word", "definition", "level", "category"},
		{"w-9", "Gregarious", "", "fond of company", "C1", "adjectives"},
	})

	repo := newMemItemRepo()
	if _, err := New(repo, DefaultConfig()).ImportFile(context.Background(), path); err != nil {
		t.Fatalf("import: %v", err)
	}

	item, err := repo.Get(context.Background(), "w-9")
	if err != nil {
		t.Fatalf("get imported item: %v", err)
	}
	if item.BaseWord != "gregarious" {
		t.Fatalf("base word = %q, want lowercased word", item.BaseWord)
	}
}

func TestImportReimportUpdatesInPlace(t *testing.T) {
	repo := newMemItemRepo()
	cfg := DefaultConfig()

	first := writeWorkbook(t, [][]any{
		{"id", "word", "base word", "definition", "level", "category"},
		{"w-1", "Serendipity", "serendipity", "old definition", "B2", "abstract"},
	})
	if _, err := New(repo, cfg).ImportFile(context.Background(), first); err != nil {
		t.Fatalf("first import: %v", err)
	}

	second := writeWorkbook(t, [][]any{
		{"id", "word", "base word", "definition", "level", "category"},
		{"w-1", "Serendipity", "serendipity", "new definition", "C1", "abstract"},
	})
	if _, err := New(repo, cfg).ImportFile(context.Background(), second); err != nil {
		t.Fatalf("second import: %v", err)
	}

	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("stored = %d items, want 1 after reimport", len(all))
	}
	if all[0].Definition != "new definition" {
		t.Fatalf("definition = %q, want updated value", all[0].Definition)
	}
}
