package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ecomdash/internal/analysis"
	"ecomdash/internal/dataset"
	"ecomdash/internal/infrastructure"
)

// DatasetLoader is the part of dataset.Loader the services depend on.
type DatasetLoader interface {
	Load(ctx context.Context) (*dataset.Snapshot, error)
	Snapshot() (*dataset.Snapshot, bool)
}

// CatalogEntry describes one selectable analysis.
type CatalogEntry struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Dashboard is the assembled result for one selection.
type Dashboard struct {
	Selected    []string           `json:"selected"`
	Sections    []analysis.Section `json:"sections"`
	Conclusion  []string           `json:"conclusion"`
	LoadedAt    time.Time          `json:"loaded_at"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Failed returns the sections whose analysis errored.
func (d *Dashboard) Failed() []analysis.Section {
	var out []analysis.Section
	for _, s := range d.Sections {
		if s.Failed() {
			out = append(out, s)
		}
	}
	return out
}

// DashboardService runs analyses against the loaded dataset.
type DashboardService struct {
	loader   DatasetLoader
	pipeline *analysis.Pipeline
	logger   *slog.Logger
	now      func() time.Time
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(loader DatasetLoader, pipeline *analysis.Pipeline, logger *slog.Logger) (*DashboardService, error) {
	if loader == nil {
		return nil, fmt.Errorf("dataset loader is nil")
	}
	if pipeline == nil {
		return nil, ErrNilPipeline
	}
	return &DashboardService{
		loader:   loader,
		pipeline: pipeline,
		logger:   infrastructure.WithComponent(logger, "dashboard_service"),
		now:      time.Now,
	}, nil
}

// Catalog lists every analysis in display order.
func (s *DashboardService) Catalog() []CatalogEntry {
	kinds := analysis.Catalog()
	out := make([]CatalogEntry, len(kinds))
	for i, k := range kinds {
		out[i] = CatalogEntry{Name: k.String(), Title: k.Title()}
	}
	return out
}

// Dashboard runs every selected analysis. Failed analyses are reported in
// their section; only a dataset retrieval failure fails the call.
func (s *DashboardService) Dashboard(ctx context.Context, sel analysis.Selection) (*Dashboard, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	sections := s.pipeline.Run(ctx, snap, sel)
	d := &Dashboard{
		Selected:    sel.Names(),
		Sections:    sections,
		Conclusion:  analysis.Conclusion(),
		LoadedAt:    snap.LoadedAt(),
		GeneratedAt: s.now(),
	}

	if failed := d.Failed(); len(failed) > 0 {
		s.logger.WarnContext(ctx, "Dashboard rendered with failed sections",
			slog.Int("failed", len(failed)),
			slog.Int("sections", len(sections)))
	} else {
		s.logger.DebugContext(ctx, "Dashboard rendered", slog.Int("sections", len(sections)))
	}
	return d, nil
}

// Section runs one analysis. The returned section may carry a computation
// error; the error return is reserved for load failures.
func (s *DashboardService) Section(ctx context.Context, kind analysis.Kind) (analysis.Section, error) {
	if !kind.Valid() {
		return analysis.Section{}, fmt.Errorf("%w: %s", analysis.ErrUnknownKind, kind)
	}
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return analysis.Section{}, err
	}
	return s.pipeline.RunOne(ctx, snap, kind), nil
}

// Datasets summarizes the loaded tables.
func (s *DashboardService) Datasets(ctx context.Context) ([]dataset.TableSummary, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Summary(), nil
}
