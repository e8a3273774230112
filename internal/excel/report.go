package excel

import (
	"fmt"

	"github.com/example/studyplan/internal/progress"
	"github.com/example/studyplan/pkg/models"
	"github.com/xuri/excelize/v2"
)

const (
	ProgressSheet = "Progress"
	SummarySheet  = "Summary"
)

var progressHeader = []interface{}{
	"Date", "Week", "Planned (min)", "Actual (min)", "Studied (min)",
	"Tasks planned", "Tasks done", "Tasks skipped",
	"Completion %", "Streak", "Burnout", "Status",
}

// ExportProgress writes the daily records and their summary to an xlsx file
func ExportProgress(path string, records []models.ProgressRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ProgressSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %v", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %v", err)
	}

	if err := f.SetSheetRow(ProgressSheet, "A1", &progressHeader); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(progressHeader), 1)
	if err := f.SetCellStyle(ProgressSheet, "A1", last, bold); err != nil {
		return err
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.Date.Format("2006-01-02"), r.Week, r.PlannedTime, r.ActualTime, r.TimeStudied,
			r.TasksPlanned, r.TasksCompleted, r.TasksSkipped,
			r.CompletionRate, r.CurrentStreak, r.BurnoutScore, string(r.Status),
		}
		if err := f.SetSheetRow(ProgressSheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %v", err)
	}
	s := progress.Summarize(records)
	summary := [][]interface{}{
		{"Days", s.Days},
		{"Study days", s.StudyDays},
		{"Planned (min)", s.PlannedTime},
		{"Actual (min)", s.ActualTime},
		{"Tasks planned", s.TasksPlanned},
		{"Tasks done", s.TasksCompleted},
		{"Tasks skipped", s.TasksSkipped},
		{"Completion %", s.CompletionRate},
		{"Average burnout", s.AverageBurnout},
		{"Peak burnout", s.PeakBurnout},
		{"Status", string(s.Status)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %v", err)
	}
	return nil
}
