package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "ecomdash/internal/errors"
	"ecomdash/internal/exporter"
	"ecomdash/internal/infrastructure"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type catalogOption struct {
	Name     string
	Title    string
	Selected bool
}

type pageSection struct {
	Name    string
	Title   string
	Error   string
	Headers []string
	Rows    [][]string
}

type pageData struct {
	Catalog     []catalogOption
	Sections    []pageSection
	Conclusion  []string
	LoadedAt    time.Time
	GeneratedAt time.Time
	Query       template.URL
}

// HTMLHandler renders the dashboard page
type HTMLHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewHTMLHandler creates a new HTML page handler
func NewHTMLHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HTMLHandler {
	return &HTMLHandler{
		service:      service,
		logger:       infrastructure.WithComponent(logger, "html_handler"),
		errorHandler: errorHandler,
		validate:     newValidator(),
	}
}

// ServeDashboard handles GET /. Sections render in catalog order with
// failed analyses shown inline, followed by the conclusion.
func (h *HTMLHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
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

	data := pageData{
		Conclusion:  dashboard.Conclusion,
		LoadedAt:    dashboard.LoadedAt,
		GeneratedAt: dashboard.GeneratedAt,
	}

	query := url.Values{}
	for _, entry := range h.service.Catalog() {
		selected := false
		for _, name := range dashboard.Selected {
			if name == entry.Name {
				selected = true
				break
			}
		}
		if selected {
			query.Add(sectionParam, entry.Name)
		}
		data.Catalog = append(data.Catalog, catalogOption{Name: entry.Name, Title: entry.Title, Selected: selected})
	}
	data.Query = template.URL(query.Encode())

	for _, section := range dashboard.Sections {
		sheet := exporter.Tabulate(section)
		ps := pageSection{Name: sheet.Name, Title: sheet.Title}
		if sheet.Failed {
			ps.Error = section.Error
		} else {
			records := sheet.Records()
			ps.Headers, ps.Rows = records[0], records[1:]
		}
		data.Sections = append(data.Sections, ps)
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard page",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
