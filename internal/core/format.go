package core

import "strings"

const (
	fallbackNone         = "特になし"
	fallbackProgress     = "本日中に完了しました。"
	fallbackNoTasksWeek  = "今週は完了したタスクがありません。"
	fallbackNoTasksMonth = "今月は完了したタスクがありません。"
	bulletPrefix         = "- "
	dayHeaderLayout      = "2006年01月02日"
	monthHeaderLayout    = "2006年01月"
	dailyGreeting        = "本日の業務報告です。"
)

// Section is one numbered list block of a summary report.
type Section struct {
	Title    string
	Items    []string
	Fallback string
}

// SummaryTemplate is the typed input of RenderSummary.
type SummaryTemplate struct {
	Header   string
	Sections []Section
}

// Render writes a section as its title followed by one "- " line per item,
// or a single "- <Fallback>" line when there are no items.
func (s Section) Render() string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString("\n")
	if len(s.Items) == 0 {
		b.WriteString(bulletPrefix + s.Fallback)
		return b.String()
	}
	for i, item := range s.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(bulletPrefix + item)
	}
	return b.String()
}

// RenderSummary renders the header and sections separated by blank lines.
func RenderSummary(t SummaryTemplate) string {
	blocks := make([]string, 0, len(t.Sections)+1)
	blocks = append(blocks, t.Header)
	for _, s := range t.Sections {
		blocks = append(blocks, s.Render())
	}
	return strings.TrimSpace(strings.Join(blocks, "\n\n"))
}

// WeeklyTemplate builds the weekly report template for a window.
func WeeklyTemplate(window DateRange, agg Aggregate) SummaryTemplate {
	return SummaryTemplate{
		Header: "【週次報告：" + window.Start.Format(dayHeaderLayout) + "〜" + window.End.Format(dayHeaderLayout) + "】",
		Sections: []Section{
			{Title: "1. 今週の完了タスク", Items: agg.Tasks, Fallback: fallbackNoTasksWeek},
			{Title: "2. 課題", Items: agg.Challenges, Fallback: fallbackNone},
			{Title: "3. 翌週の予定", Items: agg.NextPlans, Fallback: fallbackNone},
		},
	}
}

// MonthlyTemplate builds the monthly report template for a window.
func MonthlyTemplate(window DateRange, agg Aggregate) SummaryTemplate {
	return SummaryTemplate{
		Header: "【月次報告：" + window.Start.Format(monthHeaderLayout) + "】",
		Sections: []Section{
			{Title: "1. 完了タスク", Items: agg.Tasks, Fallback: fallbackNoTasksMonth},
			{Title: "2. 課題", Items: agg.Challenges, Fallback: fallbackNone},
			{Title: "3. 翌月の予定", Items: agg.NextPlans, Fallback: fallbackNone},
		},
	}
}

// FormatWeekly renders the weekly report text.
func FormatWeekly(window DateRange, agg Aggregate) string {
	return RenderSummary(WeeklyTemplate(window, agg))
}

// FormatMonthly renders the monthly report text.
func FormatMonthly(window DateRange, agg Aggregate) string {
	return RenderSummary(MonthlyTemplate(window, agg))
}

// FormatDaily renders the one-click daily report of a single record.
// Absent optional fields are replaced by fixed fallback sentences.
func FormatDaily(r Report) string {
	blocks := []string{
		dailyGreeting,
		"【今日の作業内容】\n" + r.Tasks,
		"【進捗状況】\n" + orFallback(r.Progress, fallbackProgress),
		"【課題・対応中】\n" + orFallback(r.Challenges, fallbackNone),
		"【明日以降の予定】\n" + orFallback(r.NextPlan, fallbackNone),
		"【所感・メモ】\n" + orFallback(r.Memo, fallbackNone),
	}
	return strings.TrimSpace(strings.Join(blocks, "\n\n"))
}

func orFallback(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
