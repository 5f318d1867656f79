package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"ecomdash/internal/analysis"
	"ecomdash/internal/dataset"
	"ecomdash/internal/infrastructure"
)

// Common error types following RFC 7807
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeServiceDown = "/errors/service-unavailable"
	TypeTimeout     = "/errors/timeout"
	TypeMethod      = "/errors/method-not-allowed"
)

// Domain-specific error types
const (
	TypeUnknownAnalysis    = "/errors/analysis/not-found"
	TypeAnalysisFailed     = "/errors/analysis/failed"
	TypeDatasetUnavailable = "/errors/dataset/unavailable"
	TypeExportFailed       = "/errors/export/failed"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.WithExtension("trace_id", traceID(r, reqID))
	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	WriteProblem(w, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Problem(r.URL.Path)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]ValidationError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, ValidationError{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		return NewValidationErrors(fields).Problem(r.URL.Path)
	}

	if errors.Is(err, analysis.ErrUnknownKind) {
		return NewProblemDetails(
			http.StatusNotFound,
			TypeUnknownAnalysis,
			"Analysis Not Found",
			err.Error(),
			r.URL.Path,
		).WithExtension("available", analysis.CatalogNames())
	}

	var retrievalErr *dataset.RetrievalError
	if errors.As(err, &retrievalErr) {
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeDatasetUnavailable,
			"Dataset Unavailable",
			err.Error(),
			r.URL.Path,
		).WithExtension("table", string(retrievalErr.Table))
	}

	var compErr *analysis.ComputationError
	if errors.As(err, &compErr) {
		problem := NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeAnalysisFailed,
			"Analysis Failed",
			err.Error(),
			r.URL.Path,
		).WithExtension("analysis", compErr.Kind.String())
		if compErr.Table != "" {
			problem.WithExtension("table", string(compErr.Table))
		}
		if compErr.Column != "" {
			problem.WithExtension("column", compErr.Column)
		}
		return problem
	}

	if errors.Is(err, dataset.ErrTableNotLoaded) {
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeDatasetUnavailable,
			"Dataset Unavailable",
			err.Error(),
			r.URL.Path,
		)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

// HandlePanic logs a recovered panic and responds with a 500 problem.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", traceID(r, reqID))

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	WriteProblem(w, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", traceID(r, middleware.GetReqID(r.Context())))

	WriteProblem(w, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethod,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", traceID(r, middleware.GetReqID(r.Context())))

	WriteProblem(w, problem)
}

// traceID prefers the trace id set by the tracing middleware.
func traceID(r *http.Request, fallback string) string {
	if id := infrastructure.GetTraceID(r.Context()); id != "" {
		return id
	}
	return fallback
}

func validationMessage(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s entries", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
