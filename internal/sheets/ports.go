package sheets

import (
	"context"

	"nippo/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportExporter mirrors stored reports into an external sheet.
	ReportExporter interface {
		// Upsert writes the report's row, replacing any row with the same ID.
		Upsert(ctx context.Context, r core.Report) error
		// Remove clears the row with the given ID; a missing row is not an error.
		Remove(ctx context.Context, id int64) error
		// Replace rewrites the whole sheet from reports.
		Replace(ctx context.Context, reports []core.Report) error
	}
)

// Header is the first row of the mirror sheet.
var Header = []string{"ID", "Date", "Tasks", "Progress", "Challenges", "NextPlan", "Memo"}
