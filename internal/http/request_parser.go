package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nippo/internal/core"
)

// maxBodyBytes bounds report submissions.
const maxBodyBytes = 1 << 20

// reportFields are the form and JSON keys of an editable report.
var reportFields = []string{"date", "tasks", "progress", "memo", "challenges", "next_plan"}

// RequestBodyParser reads a request body once and exposes it as either
// JSON or form values.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]json.RawMessage
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. JSON is chosen by content type or by a leading
// brace; anything else is parsed as a form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSON() {
		p.jsonData = make(map[string]json.RawMessage)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	if p.err != nil {
		p.err = fmt.Errorf("invalid form body: %w", p.err)
	}
	return p.err
}

// IsJSON reports whether the body is treated as JSON.
func (p *RequestBodyParser) IsJSON() bool {
	if mt, _, err := mime.ParseMediaType(p.contentType); err == nil && mt == "application/json" {
		return true
	}
	trimmed := strings.TrimSpace(string(p.body))
	return strings.HasPrefix(trimmed, "{")
}

// Lookup returns the sanitized value of key and whether it was present.
// JSON null counts as absent.
func (p *RequestBodyParser) Lookup(key string) (string, bool, error) {
	if p.jsonData != nil {
		raw, ok := p.jsonData[key]
		if !ok || string(raw) == "null" {
			return "", false, nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, fmt.Errorf("field %q must be a string", key)
		}
		return sanitizeInput(s), true, nil
	}
	if p.formData != nil && p.formData.Has(key) {
		return sanitizeInput(p.formData.Get(key)), true, nil
	}
	return "", false, nil
}

// ReportInput builds a core.ReportInput from the parsed body.
func (p *RequestBodyParser) ReportInput() (core.ReportInput, error) {
	if err := p.Parse(); err != nil {
		return core.ReportInput{}, err
	}

	values := make(map[string]*string, len(reportFields))
	for _, key := range reportFields {
		v, ok, err := p.Lookup(key)
		if err != nil {
			return core.ReportInput{}, err
		}
		if ok {
			values[key] = &v
		}
	}

	in := core.ReportInput{
		Tasks:      values["tasks"],
		Progress:   values["progress"],
		Memo:       values["memo"],
		Challenges: values["challenges"],
		NextPlan:   values["next_plan"],
	}
	if d := values["date"]; d != nil {
		in.Date = *d
	}
	return in, nil
}

// errBadID is returned for a path id that is not a positive integer.
var errBadID = errors.New("id must be a positive integer")

// ParseID reads the {id} path value.
func ParseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// ParseReferenceDate reads the optional ?date= query parameter, falling
// back to now.
func ParseReferenceDate(query url.Values, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(query.Get("date"))
	if v == "" {
		return now, nil
	}
	t, err := core.ParseDate(v)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: "date", Err: err}
	}
	return t, nil
}

// sanitizeInput drops control characters other than tab, newline and
// carriage return. Trimming is left to normalization.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
