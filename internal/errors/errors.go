package errors

import (
	"fmt"
	"net/http"

	"ecomdash/internal/analysis"
)

// APIError is raised by handlers and middleware when the failure already
// knows its status and problem type.
type APIError struct {
	Status  int
	Code    string
	Type    string
	Message string
	Details interface{}
}

func (e *APIError) Error() string {
	return e.Message
}

// Problem converts the error into a problem document for instance.
func (e *APIError) Problem(instance string) *ProblemDetails {
	problem := NewProblemDetails(e.Status, e.Type, http.StatusText(e.Status), e.Message, instance).
		WithExtension("error_code", e.Code)

	switch d := e.Details.(type) {
	case nil:
	case ValidationErrors:
		problem.WithExtension("errors", d.Errors)
	default:
		problem.WithExtension("details", d)
	}

	if e.Type == TypeUnknownAnalysis {
		problem.WithExtension("available", analysis.CatalogNames())
	}
	return problem
}

// ErrRateLimitExceeded is answered with 429 by the rate limiter.
var ErrRateLimitExceeded = &APIError{
	Status:  http.StatusTooManyRequests,
	Code:    "RATE_LIMIT_EXCEEDED",
	Type:    TypeRateLimit,
	Message: "Rate limit exceeded, retry shortly",
}

// UnknownAnalysisError reports a section name outside the catalog.
func UnknownAnalysisError(name string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "UNKNOWN_ANALYSIS",
		Type:    TypeUnknownAnalysis,
		Message: fmt.Sprintf("analysis %q not found", name),
	}
}

// ExportError wraps a failure while writing a report file.
func ExportError(format string, err error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "EXPORT_FAILED",
		Type:    TypeExportFailed,
		Message: fmt.Sprintf("%s export failed", format),
		Details: err.Error(),
	}
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors builds the 400 for a set of rejected fields.
func NewValidationErrors(fields []ValidationError) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_FAILED",
		Type:    TypeValidation,
		Message: "One or more request parameters are invalid",
		Details: ValidationErrors{Errors: fields},
	}
}
