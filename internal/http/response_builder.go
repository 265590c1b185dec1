// Package http exposes the report service as a JSON API.
//
// This file implements a small builder for JSON responses and the mapping
// from domain errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"nippo/internal/core"
	"nippo/internal/services"
)

// Error kinds carried in the "kind" field of error bodies.
const (
	KindNotFound    = "not_found"
	KindValidation  = "validation"
	KindBadRequest  = "bad_request"
	KindRateLimited = "rate_limited"
	KindInternal    = "internal"
)

// ResponseBuilder provides a fluent API for JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
	raw        []byte
}

// NewResponse creates a builder with a 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a response header.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets v as the JSON encoded body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.payload = v
	b.raw = nil
	return b
}

// Bytes sets a raw body with the given content type.
func (b *ResponseBuilder) Bytes(contentType string, body []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.raw = body
	b.payload = nil
	return b
}

// Write sends the response.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	var body []byte
	if b.payload != nil {
		encoded, err := json.Marshal(b.payload)
		if err != nil {
			b.statusCode = http.StatusInternalServerError
			encoded = []byte(`{"error":"encoding failed","kind":"internal"}`)
		}
		body = append(encoded, '\n')
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	} else {
		body = b.raw
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ErrorResponse builds an error body with the given status and kind.
func ErrorResponse(statusCode int, kind, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(ErrorBody{Error: message, Kind: kind})
}

// BadRequestError creates a 400 response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, KindBadRequest, message)
}

// NotFoundError creates a 404 response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, KindNotFound, message)
}

// ValidationFailed creates a 422 response.
func ValidationFailed(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, KindValidation, message)
}

// InternalServerError creates a 500 response. The message never carries
// the underlying error text.
func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, KindInternal, "internal error")
}

// TooManyRequests creates a 429 response.
func TooManyRequests() *ResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, KindRateLimited, "rate limit exceeded")
}

// FromError maps a service error onto a response. It reports whether the
// error was unexpected so callers can log it.
func FromError(err error) (*ResponseBuilder, bool) {
	var ve *core.ValidationError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(err.Error()), false
	case errors.As(err, &ve):
		return ValidationFailed(ve.Error()), false
	default:
		return InternalServerError(), true
	}
}

// ReportList is the body of GET /reports.
type ReportList struct {
	Reports []core.Report `json:"reports"`
}

// DailyBody is the body of GET /reports/{id}/daily.
type DailyBody struct {
	ID         int64  `json:"id"`
	ReportText string `json:"report_text"`
}

// WeeklyBody is the body of GET /weekly-report.
type WeeklyBody struct {
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Reports   []core.Report `json:"reports"`
	core.Aggregate
	WeeklyReportText string `json:"weekly_report_text"`
}

// MonthlyBody is the body of GET /monthly-report.
type MonthlyBody struct {
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Reports   []core.Report `json:"reports"`
	core.Aggregate
	SortedTasks       []core.TaskCount `json:"sorted_tasks"`
	MonthlyReportText string           `json:"monthly_report_text"`
}

// NewWeeklyBody flattens a weekly summary for the wire.
func NewWeeklyBody(w services.WeeklyReport) WeeklyBody {
	return WeeklyBody{
		StartDate:        w.Window.StartISO(),
		EndDate:          w.Window.EndISO(),
		Reports:          nonNilReports(w.Reports),
		Aggregate:        nonNilAggregate(w.Aggregate),
		WeeklyReportText: w.Text,
	}
}

// NewMonthlyBody flattens a monthly summary for the wire.
func NewMonthlyBody(m services.MonthlyReport) MonthlyBody {
	ranked := m.RankedTasks
	if ranked == nil {
		ranked = []core.TaskCount{}
	}
	return MonthlyBody{
		StartDate:         m.Window.StartISO(),
		EndDate:           m.Window.EndISO(),
		Reports:           nonNilReports(m.Reports),
		Aggregate:         nonNilAggregate(m.Aggregate),
		SortedTasks:       ranked,
		MonthlyReportText: m.Text,
	}
}

func nonNilReports(rs []core.Report) []core.Report {
	if rs == nil {
		return []core.Report{}
	}
	return rs
}

func nonNilAggregate(a core.Aggregate) core.Aggregate {
	for _, s := range []*[]string{&a.Tasks, &a.Challenges, &a.NextPlans} {
		if *s == nil {
			*s = []string{}
		}
	}
	return a
}
