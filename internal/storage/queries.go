package storage

import (
	"context"
	"database/sql"
)

// TimestampLayout matches SQLite's CURRENT_TIMESTAMP text form.
const TimestampLayout = "2006-01-02 15:04:05"

// DBTX is the subset of *sql.DB the queries use.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// ReportRow mirrors one row of the reports table.
type ReportRow struct {
	ID         int64
	Date       string
	Tasks      string
	Progress   sql.NullString
	Memo       sql.NullString
	Challenges sql.NullString
	NextPlan   sql.NullString
	CreatedAt  sql.NullString
	UpdatedAt  sql.NullString
}

const reportColumns = `id, date, tasks, progress, memo, challenges, next_plan, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (ReportRow, error) {
	var r ReportRow
	err := s.Scan(&r.ID, &r.Date, &r.Tasks, &r.Progress, &r.Memo, &r.Challenges, &r.NextPlan, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

type CreateReportParams struct {
	Date       string
	Tasks      string
	Progress   sql.NullString
	Memo       sql.NullString
	Challenges sql.NullString
	NextPlan   sql.NullString
}

const createReport = `INSERT INTO reports (date, tasks, progress, memo, challenges, next_plan)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + reportColumns

func (q *Queries) CreateReport(ctx context.Context, arg CreateReportParams) (ReportRow, error) {
	row := q.db.QueryRowContext(ctx, createReport,
		arg.Date, arg.Tasks, arg.Progress, arg.Memo, arg.Challenges, arg.NextPlan)
	return scanReport(row)
}

const getReport = `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

func (q *Queries) GetReport(ctx context.Context, id int64) (ReportRow, error) {
	return scanReport(q.db.QueryRowContext(ctx, getReport, id))
}

const listReports = `SELECT ` + reportColumns + ` FROM reports ORDER BY date DESC, id DESC`

func (q *Queries) ListReports(ctx context.Context) ([]ReportRow, error) {
	return q.list(ctx, listReports)
}

const listReportsInRange = `SELECT ` + reportColumns + ` FROM reports
WHERE date >= ? AND date <= ?
ORDER BY date DESC, id DESC`

func (q *Queries) ListReportsInRange(ctx context.Context, start, end string) ([]ReportRow, error) {
	return q.list(ctx, listReportsInRange, start, end)
}

func (q *Queries) list(ctx context.Context, query string, args ...any) ([]ReportRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ReportRow
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type UpdateReportParams struct {
	ID         int64
	Date       string
	Tasks      string
	Progress   sql.NullString
	Memo       sql.NullString
	Challenges sql.NullString
	NextPlan   sql.NullString
	UpdatedAt  string
}

const updateReport = `UPDATE reports
SET date = ?, tasks = ?, progress = ?, memo = ?, challenges = ?, next_plan = ?, updated_at = ?
WHERE id = ?
RETURNING ` + reportColumns

func (q *Queries) UpdateReport(ctx context.Context, arg UpdateReportParams) (ReportRow, error) {
	row := q.db.QueryRowContext(ctx, updateReport,
		arg.Date, arg.Tasks, arg.Progress, arg.Memo, arg.Challenges, arg.NextPlan, arg.UpdatedAt, arg.ID)
	return scanReport(row)
}

const deleteReport = `DELETE FROM reports WHERE id = ?`

func (q *Queries) DeleteReport(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteReport, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
