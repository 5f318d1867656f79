package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ecomdash/internal/analysis"
	apierrors "ecomdash/internal/errors"
	"ecomdash/internal/exporter"
	"ecomdash/internal/infrastructure"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// DashboardHandler serves the analysis catalog, sections and exports
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       infrastructure.WithComponent(logger, "dashboard_handler"),
		errorHandler: errorHandler,
		validate:     newValidator(),
	}
}

// RegisterRoutes registers the dashboard API routes on r
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/catalog", h.GetCatalog)
		r.Get("/datasets", h.GetDatasets)
		r.Get("/dashboard", h.GetDashboard)
		r.With(h.KindCtx).Get("/dashboard/{kind}", h.GetSection)
	})

	r.Get("/export.xlsx", h.ExportWorkbook)
	r.With(h.KindCtx).Get("/export/{kind}.csv", h.ExportCSV)
}

type kindCtxKey struct{}

// KindCtx resolves the {kind} path parameter; unknown names are 404.
func (h *DashboardHandler) KindCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "kind")
		kind, err := analysis.ParseKind(name)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.UnknownAnalysisError(name))
			return
		}
		ctx := contextWithKind(r, kind)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCatalog handles GET /api/catalog
func (h *DashboardHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"analyses": h.service.Catalog(),
	})
}

// GetDatasets handles GET /api/datasets
func (h *DashboardHandler) GetDatasets(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Datasets(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"tables": summary,
	})
}

// GetDashboard handles GET /api/dashboard?section=...
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(h.validate, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), sel)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build dashboard",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dashboard)
}

// GetSection handles GET /api/dashboard/{kind}. A failed analysis is a 422.
func (h *DashboardHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	kind := kindFromContext(r)

	section, err := h.service.Section(r.Context(), kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if section.Failed() {
		h.errorHandler.HandleError(w, r, section.Err)
		return
	}
	render.JSON(w, r, section)
}

// ExportWorkbook handles GET /api/export.xlsx?section=...
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(h.validate, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// buffer so a write failure can still become a problem response
	var buf bytes.Buffer
	if err := exporter.WriteWorkbook(&buf, exporter.TabulateAll(dashboard.Sections), dashboard.Conclusion); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportError("xlsx", err))
		return
	}

	h.logger.InfoContext(r.Context(), "workbook exported",
		slog.Int("sections", len(dashboard.Sections)),
		slog.Int("bytes", buf.Len()),
	)
	writeAttachment(w, contentTypeXLSX, exportName("dashboard", "xlsx", dashboard.GeneratedAt), buf.Bytes())
}

// ExportCSV handles GET /api/export/{kind}.csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	kind := kindFromContext(r)

	section, err := h.service.Section(r.Context(), kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if section.Failed() {
		h.errorHandler.HandleError(w, r, section.Err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteCSV(&buf, exporter.Tabulate(section), exporter.WriteOptions{BOMPrefix: true}); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportError("csv", err))
		return
	}
	writeAttachment(w, contentTypeCSV, kind.String()+".csv", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func exportName(base, ext string, at time.Time) string {
	if at.IsZero() {
		return base + "." + ext
	}
	return fmt.Sprintf("%s_%s.%s", base, at.UTC().Format("20060102_150405"), ext)
}
