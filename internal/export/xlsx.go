// Package export renders monthly summaries as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"nippo/internal/core"
	"nippo/internal/services"
)

const (
	SheetReports = "月報"
	SheetRanking = "ランキング"
	SheetText    = "報告書"

	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	reportHeader  = []interface{}{"日付", "作業内容", "進捗状況", "課題", "翌日以降の予定", "メモ"}
	rankingHeader = []interface{}{"タスク", "回数"}
)

// MonthlyWorkbook builds a workbook with the month's records, the task
// ranking and the formatted report text on separate sheets.
func MonthlyWorkbook(m services.MonthlyReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetReports); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetRanking, SheetText} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File, services.MonthlyReport) error{
		writeReports,
		writeRanking,
		writeText,
	}
	for _, step := range steps {
		if err := step(f, m); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteMonthly streams the monthly workbook to w
func WriteMonthly(w io.Writer, m services.MonthlyReport) error {
	f, err := MonthlyWorkbook(m)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename is the suggested download name for the month's workbook
func Filename(window core.DateRange) string {
	return "nippo-" + window.Start.Format("2006-01") + ".xlsx"
}

func writeReports(f *excelize.File, m services.MonthlyReport) error {
	if err := writeHeader(f, SheetReports, reportHeader); err != nil {
		return err
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, r := range m.Reports {
		row := []interface{}{
			r.Date,
			r.Tasks,
			core.Deref(r.Progress),
			core.Deref(r.Challenges),
			core.Deref(r.NextPlan),
			core.Deref(r.Memo),
		}
		if err := setRow(f, SheetReports, i+2, row); err != nil {
			return err
		}
	}
	if len(m.Reports) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(reportHeader), len(m.Reports)+1)
		if err := f.SetCellStyle(SheetReports, "A2", last, wrap); err != nil {
			return fmt.Errorf("style rows: %w", err)
		}
	}
	if err := f.SetColWidth(SheetReports, "A", "A", 12); err != nil {
		return err
	}
	return f.SetColWidth(SheetReports, "B", "F", 40)
}

func writeRanking(f *excelize.File, m services.MonthlyReport) error {
	if err := writeHeader(f, SheetRanking, rankingHeader); err != nil {
		return err
	}
	for i, tc := range m.RankedTasks {
		if err := setRow(f, SheetRanking, i+2, []interface{}{tc.Task, tc.Count}); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetRanking, "A", "A", 48)
}

func writeText(f *excelize.File, m services.MonthlyReport) error {
	for i, line := range strings.Split(m.Text, "\n") {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellValue(SheetText, cell, line); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}
	return f.SetColWidth(SheetText, "A", "A", 80)
}

func writeHeader(f *excelize.File, sheet string, header []interface{}) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return f.SetCellStyle(sheet, "A1", last, bold)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
