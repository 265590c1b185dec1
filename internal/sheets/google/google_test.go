package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	goption "google.golang.org/api/option"

	"nippo/internal/core"
	ports "nippo/internal/sheets"
)

// fakeSheet serves the subset of the Sheets values API the client uses
type fakeSheet struct {
	mu   sync.Mutex
	rows [][]string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "/v4/spreadsheets/sid/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)
	op := r.Method
	for _, suffix := range []string{":append", ":clear"} {
		if strings.HasSuffix(rng, suffix) {
			op = suffix
			rng = strings.TrimSuffix(rng, suffix)
		}
	}
	start := startRow(rng)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch op {
	case http.MethodGet:
		values := make([][]string, len(f.rows))
		for i, row := range f.rows {
			values[i] = []string{}
			if len(row) > 0 {
				values[i] = []string{row[0]}
			}
		}
		writeJSON(w, map[string]any{"range": rng, "majorDimension": "ROWS", "values": values})
	case http.MethodPut:
		values := decodeValues(w, r)
		if start == 0 {
			start = 1
		}
		for i, v := range values {
			f.set(start-1+i, v)
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sid", "updatedRows": len(values)})
	case ":append":
		for _, v := range decodeValues(w, r) {
			f.rows = append(f.rows, v)
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sid"})
	case ":clear":
		if start == 0 {
			f.rows = nil
		} else if start <= len(f.rows) {
			f.rows[start-1] = []string{}
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sid", "clearedRange": rng})
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func (f *fakeSheet) set(idx int, row []string) {
	for len(f.rows) <= idx {
		f.rows = append(f.rows, []string{})
	}
	f.rows[idx] = row
}

func (f *fakeSheet) snapshot() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.rows))
	copy(out, f.rows)
	return out
}

// startRow extracts N from "Sheet!AN..." ranges; 0 means whole columns
func startRow(rng string) int {
	if i := strings.Index(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	first := strings.SplitN(rng, ":", 2)[0]
	n, err := strconv.Atoi(strings.TrimLeft(first, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	if err != nil {
		return 0
	}
	return n
}

func decodeValues(w http.ResponseWriter, r *http.Request) [][]string {
	var body struct {
		Values [][]any `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	out := make([][]string, len(body.Values))
	for i, row := range body.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T) (*Client, *fakeSheet) {
	t.Helper()
	fake := &fakeSheet{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sid", SheetName: "Reports"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, fake
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{SheetName: "Reports"})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sid"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReportRowLayout(t *testing.T) {
	r := core.Report{
		ID:         7,
		Date:       "2025-03-05",
		Tasks:      "a\nb",
		Progress:   core.StringPtr("half"),
		Memo:       core.StringPtr("memo"),
		NextPlan:   core.StringPtr("c"),
		Challenges: nil,
	}
	want := []interface{}{int64(7), "2025-03-05", "a\nb", "half", "", "c", "memo"}
	if diff := cmp.Diff(want, ReportRow(r)); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
	if len(ports.Header) != len(want) {
		t.Fatalf("header has %d columns, row has %d", len(ports.Header), len(want))
	}
}

func TestBuildRowsSortsByID(t *testing.T) {
	rows := BuildRows([]core.Report{{ID: 3, Tasks: "c"}, {ID: 1, Tasks: "a"}})
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][0] != int64(1) || rows[2][0] != int64(3) {
		t.Fatalf("unexpected order: %v", rows)
	}
}

func TestFindRow(t *testing.T) {
	ids := []string{"ID", "1", "", "12"}
	cases := map[int64]int{1: 2, 12: 4, 2: 0, 99: 0}
	for id, want := range cases {
		if got := FindRow(ids, id); got != want {
			t.Errorf("FindRow(%d) = %d, want %d", id, got, want)
		}
	}
}

func TestClient_UpsertAppendsThenUpdates(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	if err := c.Upsert(ctx, core.Report{ID: 1, Date: "2025-03-05", Tasks: "a"}); err != nil {
		t.Fatalf("Upsert 1: %v", err)
	}
	if err := c.Upsert(ctx, core.Report{ID: 2, Date: "2025-03-06", Tasks: "b"}); err != nil {
		t.Fatalf("Upsert 2: %v", err)
	}
	if err := c.Upsert(ctx, core.Report{ID: 1, Date: "2025-03-05", Tasks: "a2"}); err != nil {
		t.Fatalf("Upsert 1 again: %v", err)
	}

	want := [][]string{
		ports.Header,
		{"1", "2025-03-05", "a2", "", "", "", ""},
		{"2", "2025-03-06", "b", "", "", "", ""},
	}
	if diff := cmp.Diff(want, fake.snapshot()); diff != "" {
		t.Fatalf("sheet mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Remove(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()
	for id := int64(1); id <= 2; id++ {
		if err := c.Upsert(ctx, core.Report{ID: id, Date: "2025-03-05", Tasks: "t"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := c.Remove(ctx, 99); err != nil {
		t.Fatalf("Remove of a missing row should be a no-op: %v", err)
	}

	rows := fake.snapshot()
	if len(rows) != 3 || len(rows[1]) != 0 || rows[2][0] != "2" {
		t.Fatalf("unexpected sheet after remove: %v", rows)
	}
}

func TestClient_Replace(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()
	if err := c.Upsert(ctx, core.Report{ID: 9, Date: "2025-01-01", Tasks: "stale"}); err != nil {
		t.Fatal(err)
	}

	err := c.Replace(ctx, []core.Report{
		{ID: 2, Date: "2025-03-06", Tasks: "b"},
		{ID: 1, Date: "2025-03-05", Tasks: "a", Memo: core.StringPtr("m")},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	want := [][]string{
		ports.Header,
		{"1", "2025-03-05", "a", "", "", "", "m"},
		{"2", "2025-03-06", "b", "", "", "", ""},
	}
	if diff := cmp.Diff(want, fake.snapshot()); diff != "" {
		t.Fatalf("sheet mismatch (-want +got):\n%s", diff)
	}
}
