package export

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nippo/internal/core"
	"nippo/internal/services"
)

func sampleMonth(t *testing.T) services.MonthlyReport {
	t.Helper()
	ref, err := core.ParseDate("2025-03-15")
	require.NoError(t, err)
	reports := []core.Report{
		{ID: 2, Date: "2025-03-31", Tasks: "a", Memo: core.StringPtr("good")},
		{ID: 1, Date: "2025-03-01", Tasks: "a\na\nb", Challenges: core.StringPtr("slow build")},
	}
	window := core.MonthOf(ref)
	agg := core.AggregateReports(reports)
	return services.MonthlyReport{
		Window:      window,
		Reports:     reports,
		Aggregate:   agg,
		RankedTasks: core.RankTasks(reports),
		Text:        core.FormatMonthly(window, agg),
	}
}

func TestWriteMonthlyRoundTrip(t *testing.T) {
	m := sampleMonth(t)

	var buf bytes.Buffer
	require.NoError(t, WriteMonthly(&buf, m))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetReports, SheetRanking, SheetText}, f.GetSheetList())

	rows, err := f.GetRows(SheetReports)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "日付", rows[0][0])
	require.Equal(t, []string{"2025-03-31", "a", "", "", "", "good"}, rows[1])
	require.Equal(t, "a\na\nb", rows[2][1])
	require.Equal(t, "slow build", rows[2][3])

	ranking, err := f.GetRows(SheetRanking)
	require.NoError(t, err)
	if diff := cmp.Diff([][]string{{"タスク", "回数"}, {"a", "3"}, {"b", "1"}}, ranking); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}

	header, err := f.GetCellValue(SheetText, "A1")
	require.NoError(t, err)
	require.Equal(t, "【月次報告：2025年03月】", header)
}

func TestMonthlyWorkbookEmptyMonth(t *testing.T) {
	ref, err := core.ParseDate("2025-02-10")
	require.NoError(t, err)
	window := core.MonthOf(ref)
	agg := core.AggregateReports(nil)
	m := services.MonthlyReport{Window: window, Aggregate: agg, Text: core.FormatMonthly(window, agg)}

	f, err := MonthlyWorkbook(m)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetReports)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	v, err := f.GetCellValue(SheetText, "A4")
	require.NoError(t, err)
	require.Equal(t, "- 今月は完了したタスクがありません。", v)
}

func TestFilename(t *testing.T) {
	ref, err := core.ParseDate("2025-12-31")
	require.NoError(t, err)
	require.Equal(t, "nippo-2025-12.xlsx", Filename(core.MonthOf(ref)))
}
