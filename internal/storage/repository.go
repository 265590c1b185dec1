package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nippo/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := SchemaVersion(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	if dirty {
		db.Close()
		return nil, fmt.Errorf("schema version %d is dirty", version)
	}
	slog.Info("SQLite schema ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create inserts a new report and returns it with its assigned ID
func (r *SQLiteRepository) Create(ctx context.Context, rep core.Report) (core.Report, error) {
	row, err := r.queries.CreateReport(ctx, CreateReportParams{
		Date:       rep.Date,
		Tasks:      rep.Tasks,
		Progress:   nullString(rep.Progress),
		Memo:       nullString(rep.Memo),
		Challenges: nullString(rep.Challenges),
		NextPlan:   nullString(rep.NextPlan),
	})
	if err != nil {
		return core.Report{}, fmt.Errorf("create report: %w", err)
	}

	slog.InfoContext(ctx, "Report saved to SQLite", "id", row.ID, "date", row.Date)
	return toReport(row), nil
}

// Get returns the report with the given ID or core.ErrNotFound
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Report, error) {
	row, err := r.queries.GetReport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, fmt.Errorf("get report %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Report{}, fmt.Errorf("get report %d: %w", id, err)
	}
	return toReport(row), nil
}

// ListAll returns every report ordered by date descending
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Report, error) {
	rows, err := r.queries.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return toReports(rows), nil
}

// ListInRange returns reports dated within [start, end] inclusive
func (r *SQLiteRepository) ListInRange(ctx context.Context, start, end string) ([]core.Report, error) {
	rows, err := r.queries.ListReportsInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list reports %s..%s: %w", start, end, err)
	}
	return toReports(rows), nil
}

// Update replaces every editable field of an existing report
func (r *SQLiteRepository) Update(ctx context.Context, rep core.Report) (core.Report, error) {
	row, err := r.queries.UpdateReport(ctx, UpdateReportParams{
		ID:         rep.ID,
		Date:       rep.Date,
		Tasks:      rep.Tasks,
		Progress:   nullString(rep.Progress),
		Memo:       nullString(rep.Memo),
		Challenges: nullString(rep.Challenges),
		NextPlan:   nullString(rep.NextPlan),
		UpdatedAt:  time.Now().UTC().Format(TimestampLayout),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, fmt.Errorf("update report %d: %w", rep.ID, core.ErrNotFound)
	}
	if err != nil {
		return core.Report{}, fmt.Errorf("update report %d: %w", rep.ID, err)
	}

	slog.InfoContext(ctx, "Report updated in SQLite", "id", row.ID, "date", row.Date)
	return toReport(row), nil
}

// Delete removes a report permanently
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteReport(ctx, id)
	if err != nil {
		return fmt.Errorf("delete report %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete report %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Report deleted from SQLite", "id", id)
	return nil
}

func toReports(rows []ReportRow) []core.Report {
	out := make([]core.Report, len(rows))
	for i, row := range rows {
		out[i] = toReport(row)
	}
	return out
}

func toReport(row ReportRow) core.Report {
	return core.Report{
		ID:         row.ID,
		Date:       row.Date,
		Tasks:      row.Tasks,
		Progress:   fromNull(row.Progress),
		Memo:       fromNull(row.Memo),
		Challenges: fromNull(row.Challenges),
		NextPlan:   fromNull(row.NextPlan),
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
