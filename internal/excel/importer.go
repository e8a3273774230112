package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/studyplan/internal/review"
	"github.com/example/studyplan/pkg/models"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	UserID           string // Owner of the imported cards
	GoalID           string // Optional goal the cards belong to
	FrontColumn      string // Column with the question
	BackColumn       string // Column with the answer
	DifficultyColumn string // Column with easy/medium/hard or 1-5
	TagsColumn       string // Column with comma separated tags
	SheetName        string // Name of the sheet to import
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		FrontColumn:      "A",
		BackColumn:       "B",
		DifficultyColumn: "C",
		TagsColumn:       "D",
		SheetName:        "Sheet1",
		StartRow:         2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// CardStore is the persistence used by the importer
type CardStore interface {
	ListReviewItems(ctx context.Context, userID, goalID string) ([]models.ReviewItem, error)
	CreateReviewItems(ctx context.Context, items []models.ReviewItem) error
}

// Row is one flashcard line of a spreadsheet
type Row struct {
	Number     int
	Front      string
	Back       string
	Difficulty string
	Tags       string
}

// ImportFlashcards reads cards from an Excel or CSV file and stores the new ones.
// Cards whose front already exists for the user are skipped.
func ImportFlashcards(ctx context.Context, config ImportConfig, scheduler *review.Scheduler, store CardStore) (*ImportResult, error) {
	if config.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	rows, err := ReadRows(config)
	if err != nil {
		return nil, err
	}

	existing, err := store.ListReviewItems(ctx, config.UserID, config.GoalID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get existing cards")
	}
	known := make(map[string]bool, len(existing))
	for _, item := range existing {
		known[strings.ToLower(item.Front)] = true
	}

	result := &ImportResult{Errors: make([]string, 0)}
	var items []models.ReviewItem
	for _, row := range rows {
		result.TotalProcessed++

		item, err := buildItem(row, config, scheduler)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row.Number, err))
			continue
		}
		key := strings.ToLower(item.Front)
		if known[key] {
			result.Skipped++
			continue
		}
		known[key] = true
		items = append(items, item)
	}

	if len(items) > 0 {
		if err := store.CreateReviewItems(ctx, items); err != nil {
			return nil, errors.Wrap(err, "failed to store cards")
		}
	}
	result.Created = len(items)
	return result, nil
}

// ReadRows reads the flashcard rows of a file, choosing the format by extension
func ReadRows(config ImportConfig) ([]Row, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return readCSV(config)
	}
	return readExcel(config)
}

func readExcel(config ImportConfig) ([]Row, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return collectRows(cells, config), nil
}

func readCSV(config ImportConfig) ([]Row, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var cells [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		cells = append(cells, record)
	}
	return collectRows(cells, config), nil
}

// collectRows maps raw cells to rows, dropping the header and blank lines
func collectRows(cells [][]string, config ImportConfig) []Row {
	start := config.StartRow
	if start < 1 {
		start = 1
	}
	var rows []Row
	for i, cell := range cells {
		if i < start-1 {
			continue
		}
		row := Row{
			Number:     i + 1,
			Front:      column(cell, config.FrontColumn),
			Back:       column(cell, config.BackColumn),
			Difficulty: column(cell, config.DifficultyColumn),
			Tags:       column(cell, config.TagsColumn),
		}
		if row.Front == "" && row.Back == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func column(row []string, letter string) string {
	if letter == "" {
		return ""
	}
	if idx := columnToIndex(letter); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func buildItem(row Row, config ImportConfig, scheduler *review.Scheduler) (models.ReviewItem, error) {
	item, err := scheduler.NewItem(config.UserID, config.GoalID, row.Front, row.Back)
	if err != nil {
		return models.ReviewItem{}, err
	}
	item.Difficulty = parseDifficulty(row.Difficulty)
	item.Tags = parseTags(row.Tags)
	return item, nil
}

// parseDifficulty accepts a difficulty name or a 1-5 number, defaulting to medium
func parseDifficulty(s string) models.Difficulty {
	switch d := models.Difficulty(strings.ToLower(s)); d {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return d
	}
	switch parseIntOrDefault(s, 1, 5, 3) {
	case 1, 2:
		return models.DifficultyEasy
	case 4, 5:
		return models.DifficultyHard
	default:
		return models.DifficultyMedium
	}
}

func parseTags(s string) models.StringList {
	tags := models.StringList{}
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

// Helper function to parse integer with default value
func parseIntOrDefault(s string, min, max, defaultVal int) int {
	val, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
