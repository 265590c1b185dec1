package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"nippo/internal/core"
	ports "nippo/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const lastColumn = "G"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.ReportExporter = (*Client)(nil)

// Config names the target spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte
}

// New creates a Sheets client authenticated with a service account.
// Extra options are appended after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Reports"
	}

	var all []goption.ClientOption
	if len(cfg.CredentialsJSON) > 0 {
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(cfg.CredentialsJSON),
			"scope", gsheet.SpreadsheetsScope)
		all = append(all,
			goption.WithCredentialsJSON(cfg.CredentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	all = append(all, opts...)
	if len(all) == 0 {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Upsert writes the report row, updating in place when its ID already has a row
func (c *Client) Upsert(ctx context.Context, r core.Report) error {
	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}

	vr := &gsheet.ValueRange{Values: [][]interface{}{ReportRow(r)}}

	if row := FindRow(ids, r.ID); row > 0 {
		rng := c.rowRange(row)
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update row %d: %w", row, err)
		}
		slog.InfoContext(ctx, "Report row updated in sheet", "id", r.ID, "row", row)
		return nil
	}

	if len(ids) == 0 {
		if err := c.writeHeader(ctx); err != nil {
			return err
		}
	}

	if _, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.tableRange(), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	slog.InfoContext(ctx, "Report row appended to sheet", "id", r.ID)
	return nil
}

// Remove clears the row holding id
func (c *Client) Remove(ctx context.Context, id int64) error {
	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	row := FindRow(ids, id)
	if row == 0 {
		slog.WarnContext(ctx, "Report row not found in sheet, nothing to clear", "id", id)
		return nil
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.rowRange(row), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear row %d: %w", row, err)
	}
	slog.InfoContext(ctx, "Report row cleared from sheet", "id", id, "row", row)
	return nil
}

// Replace clears the sheet and writes the header plus one row per report, by ascending ID
func (c *Client) Replace(ctx context.Context, reports []core.Report) error {
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.tableRange(), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	vr := &gsheet.ValueRange{Values: BuildRows(reports)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.sheetName+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	slog.InfoContext(ctx, "Sheet rewritten from store", "rows", len(reports))
	return nil
}

func (c *Client) writeHeader(ctx context.Context) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{toInterfaces(ports.Header)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rowRange(1), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// readIDs returns column A, one entry per sheet row
func (c *Client) readIDs(ctx context.Context) ([]string, error) {
	rng := c.sheetName + "!A:A"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ids: %w", err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

func (c *Client) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", c.sheetName, row, lastColumn, row)
}

func (c *Client) tableRange() string {
	return c.sheetName + "!A:" + lastColumn
}

// ReportRow lays out a report in header column order
func ReportRow(r core.Report) []interface{} {
	return []interface{}{
		r.ID,
		r.Date,
		r.Tasks,
		core.Deref(r.Progress),
		core.Deref(r.Challenges),
		core.Deref(r.NextPlan),
		core.Deref(r.Memo),
	}
}

// BuildRows returns the header followed by one row per report, by ascending ID
func BuildRows(reports []core.Report) [][]interface{} {
	sorted := append([]core.Report(nil), reports...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	rows := make([][]interface{}, 0, len(sorted)+1)
	rows = append(rows, toInterfaces(ports.Header))
	for _, r := range sorted {
		rows = append(rows, ReportRow(r))
	}
	return rows
}

// FindRow returns the 1-based sheet row whose ID cell equals id, or 0
func FindRow(ids []string, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, v := range ids {
		if v == want {
			return i + 1
		}
	}
	return 0
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
