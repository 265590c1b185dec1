package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nippo/internal/amqp"
	"nippo/internal/core"
	applog "nippo/internal/log"
)

// ReportStore is the persistence port for reports
type ReportStore interface {
	Create(ctx context.Context, r core.Report) (core.Report, error)
	Get(ctx context.Context, id int64) (core.Report, error)
	ListAll(ctx context.Context) ([]core.Report, error)
	ListInRange(ctx context.Context, start, end string) ([]core.Report, error)
	Update(ctx context.Context, r core.Report) (core.Report, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}

// EventPublisher announces report mutations
type EventPublisher interface {
	PublishReportEvent(ctx context.Context, event *amqp.ReportEvent) error
	Close() error
}

// WeeklyReport is the Monday to Sunday summary around a reference date
type WeeklyReport struct {
	Window    core.DateRange
	Reports   []core.Report
	Aggregate core.Aggregate
	Text      string
}

// MonthlyReport is the calendar month summary around a reference date
type MonthlyReport struct {
	Window      core.DateRange
	Reports     []core.Report
	Aggregate   core.Aggregate
	RankedTasks []core.TaskCount
	Text        string
}

// ReportService orchestrates report operations across the store and AMQP
type ReportService struct {
	store     ReportStore
	publisher EventPublisher
	log       *applog.StructuredLogger
}

// NewReportService wires a store and an optional publisher; pass a nil
// publisher to disable events.
func NewReportService(store ReportStore, publisher EventPublisher) *ReportService {
	return &ReportService{
		store:     store,
		publisher: publisher,
		log:       applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentReport, Handler: slog.Default().Handler()})),
	}
}

// Submit normalizes and stores a new report
func (s *ReportService) Submit(ctx context.Context, in core.ReportInput) (core.Report, error) {
	rep, err := in.ToReport()
	if err != nil {
		return core.Report{}, err
	}

	saved, err := s.store.Create(ctx, rep)
	if err != nil {
		return core.Report{}, fmt.Errorf("save report: %w", err)
	}

	s.log.LogReportSaved(ctx, applog.OpCreate, saved.ID, saved.Date, lineCount(saved.Tasks))
	s.publish(ctx, amqp.EventCreated, saved.ID, saved.Date)
	return saved, nil
}

// Edit replaces every editable field of an existing report
func (s *ReportService) Edit(ctx context.Context, id int64, in core.ReportInput) (core.Report, error) {
	rep, err := in.ToReport()
	if err != nil {
		return core.Report{}, err
	}
	rep.ID = id

	saved, err := s.store.Update(ctx, rep)
	if err != nil {
		return core.Report{}, fmt.Errorf("edit report: %w", err)
	}

	s.log.LogReportSaved(ctx, applog.OpUpdate, saved.ID, saved.Date, lineCount(saved.Tasks))
	s.publish(ctx, amqp.EventUpdated, saved.ID, saved.Date)
	return saved, nil
}

func (s *ReportService) Get(ctx context.Context, id int64) (core.Report, error) {
	rep, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Report{}, fmt.Errorf("get report: %w", err)
	}
	return rep, nil
}

// List returns every report, newest first
func (s *ReportService) List(ctx context.Context) ([]core.Report, error) {
	reports, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *ReportService) Delete(ctx context.Context, id int64) error {
	// Read first so the event can carry the date
	rep, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}

	slog.InfoContext(ctx, "Report deleted", "id", id, "date", rep.Date)
	s.publish(ctx, amqp.EventDeleted, id, rep.Date)
	return nil
}

// WeeklyReport summarizes the Monday to Sunday week containing ref
func (s *ReportService) WeeklyReport(ctx context.Context, ref time.Time) (WeeklyReport, error) {
	window := core.WeekOf(ref)
	reports, err := s.store.ListInRange(ctx, window.StartISO(), window.EndISO())
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("weekly report: %w", err)
	}

	agg := core.AggregateReports(reports)
	s.log.LogSummary(ctx, applog.OpWeekly, window.StartISO(), window.EndISO(), len(reports))

	return WeeklyReport{
		Window:    window,
		Reports:   reports,
		Aggregate: agg,
		Text:      core.FormatWeekly(window, agg),
	}, nil
}

// MonthlyReport summarizes the calendar month containing ref
func (s *ReportService) MonthlyReport(ctx context.Context, ref time.Time) (MonthlyReport, error) {
	window := core.MonthOf(ref)
	reports, err := s.store.ListInRange(ctx, window.StartISO(), window.EndISO())
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("monthly report: %w", err)
	}

	agg := core.AggregateReports(reports)
	s.log.LogSummary(ctx, applog.OpMonthly, window.StartISO(), window.EndISO(), len(reports))

	return MonthlyReport{
		Window:      window,
		Reports:     reports,
		Aggregate:   agg,
		RankedTasks: core.RankTasks(reports),
		Text:        core.FormatMonthly(window, agg),
	}, nil
}

// GenerateDailyReport renders the one-day report text for a stored report
func (s *ReportService) GenerateDailyReport(ctx context.Context, id int64) (string, error) {
	rep, err := s.store.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("daily report: %w", err)
	}
	return core.FormatDaily(rep), nil
}

// publish never fails the caller; the mutation is already stored
func (s *ReportService) publish(ctx context.Context, event amqp.EventType, id int64, date string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReportEvent(ctx, amqp.NewReportEvent(event, id, date)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish report event",
			"id", id,
			"event", event,
			"error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *ReportService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close report service: %w", err)
	}
	return nil
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
