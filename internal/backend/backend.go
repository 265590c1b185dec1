// Package backend builds the store, publisher and exporter selected by
// configuration so every binary wires them the same way.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"nippo/internal/amqp"
	"nippo/internal/config"
	"nippo/internal/services"
	"nippo/internal/sheets"
	gsheet "nippo/internal/sheets/google"
	"nippo/internal/storage"
	"nippo/internal/storage/memory"
)

// Type names a report store implementation
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

// Types returns every supported store type
func Types() []Type {
	return []Type{SQLite, Memory}
}

// IsValid returns true if the store type is supported
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// Store is a report store that can also be health checked
type Store interface {
	services.ReportStore
	Ping(ctx context.Context) error
}

var (
	_ Store = (*storage.SQLiteRepository)(nil)
	_ Store = (*memory.Store)(nil)
)

// Backend bundles the opened dependencies of the report service
type Backend struct {
	Store   Store
	Service *services.ReportService
	// Events is nil when AMQP is disabled
	Events *amqp.Client
}

// OpenStore returns the store named by cfg.DataBackend
func OpenStore(cfg *config.Config) (Store, error) {
	switch Type(cfg.DataBackend) {
	case Memory:
		slog.Info("Using in-memory report store", "component", "backend")
		return memory.New(), nil
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		slog.Info("Using SQLite report store", "component", "backend", "path", cfg.SQLiteDBPath)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q: must be one of %v", cfg.DataBackend, Types())
	}
}

// OpenEvents dials the broker when AMQP is configured and returns nil otherwise
func OpenEvents(cfg *config.Config) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		slog.Info("AMQP disabled, report events will not be published", "component", "backend")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	return client, nil
}

// Open builds the store, the optional publisher and the service over them
func Open(cfg *config.Config) (*Backend, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	events, err := OpenEvents(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.EventPublisher
	if events != nil {
		publisher = events
	}
	return &Backend{
		Store:   store,
		Service: services.NewReportService(store, publisher),
		Events:  events,
	}, nil
}

// Close releases the service, which closes the store and publisher
func (b *Backend) Close() error {
	if b == nil || b.Service == nil {
		return nil
	}
	return b.Service.Close()
}

// ErrSheetsDisabled is returned by OpenExporter when no spreadsheet is configured
var ErrSheetsDisabled = errors.New("google sheets export is not configured")

// OpenExporter builds the spreadsheet mirror
func OpenExporter(ctx context.Context, cfg *config.Config) (sheets.ReportExporter, error) {
	if !cfg.SheetsEnabled() {
		return nil, ErrSheetsDisabled
	}
	creds, err := cfg.GoogleCredentials()
	if err != nil {
		return nil, err
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("open sheets exporter: %w", err)
	}
	return client, nil
}
