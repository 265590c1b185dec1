package core

import (
	"fmt"
	"sort"
	"time"
)

// DateRange is an inclusive calendar-day window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses an ISO "YYYY-MM-DD" date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekOf returns the Monday–Sunday window containing t.
func WeekOf(t time.Time) DateRange {
	day := Day(t)
	// time.Weekday starts the week on Sunday; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return DateRange{Start: start, End: start.AddDate(0, 0, 6)}
}

// MonthOf returns the window from the first to the last day of t's month.
func MonthOf(t time.Time) DateRange {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}

// StartISO is the window start as "YYYY-MM-DD".
func (r DateRange) StartISO() string { return r.Start.Format(DateLayout) }

// EndISO is the window end as "YYYY-MM-DD".
func (r DateRange) EndISO() string { return r.End.Format(DateLayout) }

// Contains reports whether the ISO date lies inside the window, bounds included.
func (r DateRange) Contains(date string) bool {
	// ISO dates order lexicographically.
	return date >= r.StartISO() && date <= r.EndISO()
}

// FilterWindow returns the records dated inside window, newest first.
// Records sharing a date are ordered by descending ID.
func FilterWindow(records []Report, window DateRange) []Report {
	out := make([]Report, 0, len(records))
	for _, r := range records {
		if window.Contains(r.Date) {
			out = append(out, r)
		}
	}
	SortByDateDesc(out)
	return out
}

// SortByDateDesc orders reports newest first, ties broken by descending ID.
func SortByDateDesc(records []Report) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].ID > records[j].ID
	})
}
