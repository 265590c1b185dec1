package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nippo/internal/core"
	"nippo/internal/services"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/reports/7").
		JSON(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get("Location") != "/reports/7" {
		t.Error("Location header not set")
	}
	if strings.TrimSpace(w.Body.String()) != `{"id":7}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_Bytes(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Bytes("text/plain", []byte("raw")).Write(w)
	if w.Body.String() != "raw" || w.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("unexpected response %q %q", w.Header().Get("Content-Type"), w.Body.String())
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantKind       string
		wantUnexpected bool
	}{
		{"not found", fmt.Errorf("get report: %w", core.ErrNotFound), 404, KindNotFound, false},
		{"validation", fmt.Errorf("submit: %w", &core.ValidationError{Field: "tasks", Err: core.ErrEmptyTasks}), 422, KindValidation, false},
		{"internal", errors.New("disk I/O error"), 500, KindInternal, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, unexpected := FromError(tt.err)
			w := httptest.NewRecorder()
			resp.Write(w)
			if w.Code != tt.wantStatus || unexpected != tt.wantUnexpected {
				t.Fatalf("status = %d unexpected = %v", w.Code, unexpected)
			}
			if !strings.Contains(w.Body.String(), `"kind":"`+tt.wantKind+`"`) {
				t.Fatalf("body = %s", w.Body.String())
			}
			if tt.wantKind == KindInternal && strings.Contains(w.Body.String(), "disk") {
				t.Fatal("internal errors must not leak details")
			}
		})
	}
}

func TestNewWeeklyBody_NilSlices(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(NewWeeklyBody(services.WeeklyReport{Window: core.WeekOf(fixedNow)})).Write(w)
	body := w.Body.String()
	for _, want := range []string{`"reports":[]`, `"unique_tasks":[]`, `"start_date":"2025-03-10"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}
