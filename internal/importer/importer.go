package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/repository"
)

// Config defines which columns of the workbook hold which item field. Column
// letters follow spreadsheet convention.
type Config struct {
	SheetName        string
	IDColumn         string
	WordColumn       string
	BaseWordColumn   string
	DefinitionColumn string
	LevelColumn      string
	CategoryColumn   string
	StartRow         int
}

// DefaultConfig returns the column layout of the standard word list export.
func DefaultConfig() Config {
	return Config{
		SheetName:        "Sheet1",
		IDColumn:         "A",
		WordColumn:       "B",
		BaseWordColumn:   "C",
		DefinitionColumn: "D",
		LevelColumn:      "E",
		CategoryColumn:   "F",
		StartRow:         2,
	}
}

// Result summarizes an import run. Rows that could not be imported are
// reported per row, they never abort the run.
type Result struct {
	TotalProcessed int
	Imported       int
	Errors         []string
}

// Importer loads vocabulary items from xlsx word lists into the local cache.
type Importer struct {
	items repository.ItemRepository
	cfg   Config
}

// New creates an importer writing through the given item repository.
func New(items repository.ItemRepository, cfg Config) *Importer {
	return &Importer{items: items, cfg: cfg}
}

// ImportFile reads the workbook at path and upserts every valid row.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(im.cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", im.cfg.SheetName, err)
	}
	return im.importRows(ctx, rows)
}

func (im *Importer) importRows(ctx context.Context, rows [][]string) (*Result, error) {
	result := &Result{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < im.cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		item, err := im.itemFromRow(row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if err := im.items.Upsert(ctx, item); err != nil {
			return result, fmt.Errorf("row %d: %w", i+1, err)
		}
		result.Imported++
	}

	return result, nil
}

func (im *Importer) itemFromRow(row []string) (*entity.VocabularyItem, error) {
	word := strings.TrimSpace(cell(row, im.cfg.WordColumn))
	if word == "" {
		return nil, fmt.Errorf("word cannot be empty")
	}

	id := strings.TrimSpace(cell(row, im.cfg.IDColumn))
	if id == "" {
		id = uuid.NewString()
	}

	baseWord := strings.TrimSpace(cell(row, im.cfg.BaseWordColumn))
	if baseWord == "" {
		baseWord = strings.ToLower(word)
	}

	return &entity.VocabularyItem{
		ID:         id,
		Word:       word,
		BaseWord:   baseWord,
		Definition: strings.TrimSpace(cell(row, im.cfg.DefinitionColumn)),
		Level:      strings.TrimSpace(cell(row, im.cfg.LevelColumn)),
		Category:   strings.TrimSpace(cell(row, im.cfg.CategoryColumn)),
	}, nil
}

func cell(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// columnToIndex converts a spreadsheet column letter to a zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
