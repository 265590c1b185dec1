package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"nippo/internal/export"
	applog "nippo/internal/log"
	"nippo/internal/middleware/trace"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady pings the store through the configured check and reports the
// request counters collected so far
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.slog.LogError(ctx, "Readiness check failed", err, applog.ComponentHTTP, applog.OpHealthCheck, nil)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	m := s.Metrics()
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Readiness check passed",
		"total_requests", m.TotalRequests,
		"avg_response_time", m.AverageResponseTime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	NewResponse().JSON(ReportList{Reports: nonNilReports(reports)}).Write(w)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	in, err := NewRequestBodyParser(w, r).ReportInput()
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rep, err := s.svc.Submit(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	s.invalidateSummaries()
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/reports/"+itoa(rep.ID)).
		JSON(rep).
		Write(w)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rep, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	NewResponse().JSON(rep).Write(w)
}

func (s *Server) handleEditReport(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in, err := NewRequestBodyParser(w, r).ReportInput()
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rep, err := s.svc.Edit(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	s.invalidateSummaries()
	NewResponse().JSON(rep).Write(w)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	text, err := s.svc.GenerateDailyReport(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, applog.OpDaily)
		return
	}
	NewResponse().JSON(DailyBody{ID: id, ReportText: text}).Write(w)
}

func (s *Server) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseReferenceDate(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, err, applog.OpWeekly)
		return
	}
	weekly, err := s.weeklyReport(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err, applog.OpWeekly)
		return
	}
	NewResponse().JSON(NewWeeklyBody(weekly)).Write(w)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseReferenceDate(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, err, applog.OpMonthly)
		return
	}
	monthly, err := s.monthlyReport(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err, applog.OpMonthly)
		return
	}
	NewResponse().JSON(NewMonthlyBody(monthly)).Write(w)
}

func (s *Server) handleMonthlyWorkbook(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseReferenceDate(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, err, applog.OpExport)
		return
	}
	monthly, err := s.monthlyReport(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err, applog.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteMonthly(&buf, monthly); err != nil {
		s.writeError(w, r, err, applog.OpExport)
		return
	}
	NewResponse().
		Header("Content-Disposition", `attachment; filename="`+export.Filename(monthly.Window)+`"`).
		Bytes(export.ContentType, buf.Bytes()).
		Write(w)
}

// writeError maps err to a response, logging only unexpected failures
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	resp, unexpected := FromError(err)
	if unexpected {
		s.slog.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, applog.NewFields().WithRequestID(tracedID(r)))
	}
	resp.Write(w)
}

func tracedID(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
