package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the storage and wire layout of a report date.
const DateLayout = "2006-01-02"

type (
	// Report is one day's activity entry. Text fields hold normalized
	// multi-line text; optional fields are nil when absent.
	Report struct {
		ID         int64   `json:"id"`
		Date       string  `json:"date"`
		Tasks      string  `json:"tasks"`
		Progress   *string `json:"progress"`
		Memo       *string `json:"memo"`
		Challenges *string `json:"challenges"`
		NextPlan   *string `json:"next_plan"`
	}

	// ReportInput carries the raw editable fields of a report as submitted.
	ReportInput struct {
		Date       string
		Tasks      *string
		Progress   *string
		Memo       *string
		Challenges *string
		NextPlan   *string
	}

	// normalizedInput is what gets validated before a Report is built.
	normalizedInput struct {
		Date       string  `validate:"required,datetime=2006-01-02"`
		Tasks      *string `validate:"required"`
		Progress   *string
		Memo       *string
		Challenges *string
		NextPlan   *string
	}
)

var (
	ErrNotFound    = errors.New("report not found")
	ErrEmptyTasks  = errors.New("tasks cannot be empty")
	ErrInvalidDate = errors.New("invalid date")
	ErrMissingDate = errors.New("date is required")
)

// ValidationError reports a caller-facing problem with one input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ToReport normalizes every free-text field and validates the result.
// The returned report has no ID.
func (in ReportInput) ToReport() (Report, error) {
	n := normalizedInput{
		Date:       strings.TrimSpace(in.Date),
		Tasks:      Normalize(in.Tasks),
		Progress:   Normalize(in.Progress),
		Memo:       Normalize(in.Memo),
		Challenges: Normalize(in.Challenges),
		NextPlan:   Normalize(in.NextPlan),
	}
	if err := validate.Struct(n); err != nil {
		return Report{}, translateValidation(err)
	}
	return Report{
		Date:       n.Date,
		Tasks:      *n.Tasks,
		Progress:   n.Progress,
		Memo:       n.Memo,
		Challenges: n.Challenges,
		NextPlan:   n.NextPlan,
	}, nil
}

func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Date":
		if fe.Tag() == "required" {
			return &ValidationError{Field: "date", Err: ErrMissingDate}
		}
		return &ValidationError{Field: "date", Err: fmt.Errorf("%w: %q", ErrInvalidDate, fe.Value())}
	case "Tasks":
		return &ValidationError{Field: "tasks", Err: ErrEmptyTasks}
	}
	return &ValidationError{Field: strings.ToLower(fe.Field()), Err: errors.New(fe.Tag())}
}

// Validate checks the invariants of an already-built report.
func (r Report) Validate() error {
	if strings.TrimSpace(r.Date) == "" {
		return &ValidationError{Field: "date", Err: ErrMissingDate}
	}
	if _, err := ParseDate(r.Date); err != nil {
		return &ValidationError{Field: "date", Err: fmt.Errorf("%w: %q", ErrInvalidDate, r.Date)}
	}
	if Normalize(&r.Tasks) == nil {
		return &ValidationError{Field: "tasks", Err: ErrEmptyTasks}
	}
	return nil
}

// TasksPtr returns the tasks field in the optional form used by the extractor.
func (r Report) TasksPtr() *string {
	if r.Tasks == "" {
		return nil
	}
	t := r.Tasks
	return &t
}
