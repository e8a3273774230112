package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/internal/review"
	"github.com/example/studyplan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memCards struct {
	items []models.ReviewItem
}

func (m *memCards) ListReviewItems(_ context.Context, userID, _ string) ([]models.ReviewItem, error) {
	var out []models.ReviewItem
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memCards) CreateReviewItems(_ context.Context, items []models.ReviewItem) error {
	m.items = append(m.items, items...)
	return nil
}

func newScheduler() *review.Scheduler {
	return review.NewScheduler(clock.NewManual(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)))
}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "cards.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportFlashcards_Excel(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Front", "Back", "Difficulty", "Tags"},
		{"mitochondria", "powerhouse of the cell", "hard", "biology, cells"},
		{"osmosis", "diffusion of water", 1, ""},
		{"", "", "", ""},
		{"no answer", "", "", ""},
		{"Mitochondria", "duplicate front", "", ""},
	})

	store := &memCards{}
	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.UserID = "u1"
	cfg.GoalID = "bio"

	result, err := ImportFlashcards(context.Background(), cfg, newScheduler(), store)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 5")

	require.Len(t, store.items, 2)
	first := store.items[0]
	assert.Equal(t, "mitochondria", first.Front)
	assert.Equal(t, models.DifficultyHard, first.Difficulty)
	assert.Equal(t, models.StringList{"biology", "cells"}, first.Tags)
	assert.Equal(t, "bio", first.GoalID)
	assert.Equal(t, 2.5, first.EaseFactor)
	assert.Equal(t, models.DifficultyEasy, store.items[1].Difficulty)
}

func TestImportFlashcards_CSVSkipsKnownCards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.csv")
	content := "front,back,difficulty,tags\n" +
		"derivative,rate of change,medium,calculus\n" +
		"integral,area under the curve,4,calculus;area\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := &memCards{items: []models.ReviewItem{{ID: "x", UserID: "u1", Front: "Derivative"}}}
	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.UserID = "u1"

	result, err := ImportFlashcards(context.Background(), cfg, newScheduler(), store)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)

	added := store.items[1]
	assert.Equal(t, "integral", added.Front)
	assert.Equal(t, models.DifficultyHard, added.Difficulty)
	assert.Equal(t, models.StringList{"calculus", "area"}, added.Tags)
}

func TestImportFlashcards_RequiresUser(t *testing.T) {
	_, err := ImportFlashcards(context.Background(), DefaultImportConfig(), newScheduler(), &memCards{})
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 3, columnToIndex("d"))
	assert.Equal(t, 27, columnToIndex("AB"))

	assert.Equal(t, models.DifficultyMedium, parseDifficulty(""))
	assert.Equal(t, models.DifficultyMedium, parseDifficulty("Medium"))
	assert.Equal(t, models.DifficultyHard, parseDifficulty("9"))
	assert.Equal(t, models.DifficultyEasy, parseDifficulty("0"))
}

func TestExportProgress(t *testing.T) {
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	records := []models.ProgressRecord{
		{Date: day, Week: 19, PlannedTime: 60, ActualTime: 50, TimeStudied: 50, TasksPlanned: 2, TasksCompleted: 2, CompletionRate: 100, CurrentStreak: 1, Status: models.StatusAhead},
		{Date: day.AddDate(0, 0, 1), Week: 19, PlannedTime: 60, ActualTime: 30, TimeStudied: 30, TasksPlanned: 2, TasksCompleted: 1, CompletionRate: 50, CurrentStreak: 2, Status: models.StatusBehind},
	}
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, ExportProgress(path, records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ProgressSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, []string{"2024-05-07", "19", "60", "30", "30", "2", "1", "0", "50", "2", "0", "behind"}, rows[2])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Actual (min)", "80"}, summary[3])
	assert.Equal(t, []string{"Study days", "2"}, summary[1])
}
