// Package worker mirrors report mutations into the spreadsheet exporter.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"nippo/internal/amqp"
	"nippo/internal/core"
	"nippo/internal/services"
	"nippo/internal/sheets"
)

// ReportReader is the read side of the report store
type ReportReader interface {
	Get(ctx context.Context, id int64) (core.Report, error)
	ListAll(ctx context.Context) ([]core.Report, error)
}

// EventConsumer delivers report events to a handler until ctx is done
type EventConsumer interface {
	ConsumeReportEvents(ctx context.Context, handler func(context.Context, *amqp.ReportEvent) error) error
}

// ExportWorker applies report events to the sheet mirror
type ExportWorker struct {
	store    ReportReader
	exporter sheets.ReportExporter
}

var _ services.Reconciler = (*ExportWorker)(nil)

func NewExportWorker(store ReportReader, exporter sheets.ReportExporter) *ExportWorker {
	return &ExportWorker{
		store:    store,
		exporter: exporter,
	}
}

// HandleEvent processes a single report event from AMQP
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.ReportEvent) error {
	slog.InfoContext(ctx, "Processing report event",
		"id", msg.ID,
		"event", msg.Event)

	switch msg.Event {
	case amqp.EventCreated, amqp.EventUpdated:
		rep, err := w.store.Get(ctx, msg.ID)
		if errors.Is(err, core.ErrNotFound) {
			// Deleted before the event was consumed; the delete event clears it
			slog.InfoContext(ctx, "Report no longer exists, skipping export", "id", msg.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get report from storage: %w", err)
		}
		if err := w.exporter.Upsert(ctx, rep); err != nil {
			return fmt.Errorf("export report %d: %w", msg.ID, err)
		}
	case amqp.EventDeleted:
		if err := w.exporter.Remove(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove report %d: %w", msg.ID, err)
		}
	default:
		return fmt.Errorf("unknown report event %q", msg.Event)
	}
	return nil
}

// Reconcile rewrites the mirror from the full store contents.
// This is a backup mechanism in case AMQP messages are lost
func (w *ExportWorker) Reconcile(ctx context.Context) error {
	reports, err := w.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	if err := w.exporter.Replace(ctx, reports); err != nil {
		return fmt.Errorf("replace sheet: %w", err)
	}
	slog.InfoContext(ctx, "Sheet reconciled with store", "reports", len(reports))
	return nil
}

// Run consumes events and, when reconcile is non-zero, runs periodic
// reconciliation until ctx is cancelled or the consumer fails
func (w *ExportWorker) Run(ctx context.Context, consumer EventConsumer, reconcile time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := consumer.ConsumeReportEvents(ctx, w.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if reconcile > 0 {
		processor := services.NewReconcileProcessor(w, services.ReconcileProcessorConfig{
			Interval:   reconcile,
			RunOnStart: true,
		})
		if err := processor.Start(ctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-ctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return processor.Stop(stopCtx)
		})
	}

	return g.Wait()
}
