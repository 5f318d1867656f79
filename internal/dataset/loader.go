package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"ecomdash/internal/config"
	"ecomdash/internal/infrastructure"
)

const defaultUserAgent = "ecomdash/1.0"

// Loader fetches the seven tables once and caches the resulting snapshot.
type Loader struct {
	sources   map[Name]string
	client    *http.Client
	userAgent string
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics

	group    singleflight.Group
	mu       sync.RWMutex
	snapshot *Snapshot
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) { l.client = client }
}

// WithUserAgent sets the User-Agent header sent to http(s) sources.
func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithTracer sets the tracer used for load spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(l *Loader) { l.tracer = tracer }
}

// WithMetrics records per-table load metrics.
func WithMetrics(metrics *infrastructure.BusinessMetrics) Option {
	return func(l *Loader) { l.metrics = metrics }
}

// NewLoader creates a Loader for the given sources. Every table in Names
// must have a non-empty location.
func NewLoader(sources map[Name]string, opts ...Option) (*Loader, error) {
	l := &Loader{
		sources:   make(map[Name]string, len(Names)),
		client:    &http.Client{Timeout: 2 * time.Minute},
		userAgent: defaultUserAgent,
		logger:    infrastructure.GetLogger(),
		tracer:    otel.Tracer("ecomdash/dataset"),
	}

	for _, name := range Names {
		src := strings.TrimSpace(sources[name])
		if src == "" {
			return nil, fmt.Errorf("no source configured for table %s", name)
		}
		l.sources[name] = src
	}

	for _, opt := range opts {
		opt(l)
	}
	l.logger = infrastructure.WithComponent(l.logger, "dataset_loader")

	return l, nil
}

// NewLoaderFromConfig creates a Loader from the datasets config section.
func NewLoaderFromConfig(cfg config.DatasetsConfig, opts ...Option) (*Loader, error) {
	sources := make(map[Name]string, len(Names))
	for table, location := range cfg.Locations() {
		sources[Name(table)] = location
	}

	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
		WithUserAgent(cfg.UserAgent),
	}
	return NewLoader(sources, append(base, opts...)...)
}

// Sources returns a copy of the configured locations.
func (l *Loader) Sources() map[Name]string {
	out := make(map[Name]string, len(l.sources))
	for k, v := range l.sources {
		out[k] = v
	}
	return out
}

// Snapshot returns the cached snapshot, if a load has succeeded.
func (l *Loader) Snapshot() (*Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot, l.snapshot != nil
}

// Load returns the cached snapshot or fetches all seven tables. Failures
// are not cached; a later call tries again.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if snap, ok := l.Snapshot(); ok {
		return snap, nil
	}

	v, err, shared := l.group.Do("load", func() (interface{}, error) {
		if snap, ok := l.Snapshot(); ok {
			return snap, nil
		}

		snap, err := l.fetchAll(ctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.snapshot = snap
		l.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		l.logger.DebugContext(ctx, "Dataset load shared with concurrent caller")
	}
	return v.(*Snapshot), nil
}

func (l *Loader) fetchAll(ctx context.Context) (*Snapshot, error) {
	ctx, span := l.tracer.Start(ctx, "dataset.load_all")
	defer span.End()

	start := time.Now()
	l.logger.InfoContext(ctx, "Loading datasets", slog.Int("tables", len(Names)))

	tables := make([]*Table, len(Names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range Names {
		g.Go(func() error {
			t, err := l.fetchOne(gctx, name)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dataset load failed")
		l.logger.ErrorContext(ctx, "Dataset load failed", slog.String("error", err.Error()))
		return nil, err
	}

	snap, err := NewSnapshot(tables...)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Datasets loaded",
		slog.Duration("duration", time.Since(start)))
	return snap, nil
}

func (l *Loader) fetchOne(ctx context.Context, name Name) (t *Table, err error) {
	source := l.sources[name]

	ctx, span := l.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(
			attribute.String("dataset.table", string(name)),
			attribute.String("dataset.source", source),
		))
	defer span.End()

	start := time.Now()
	defer func() {
		rows := 0
		if t != nil {
			rows = t.Len()
		}
		infrastructure.RecordDatasetLoad(ctx, l.metrics, string(name), rows, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "table load failed")
		}
	}()

	fail := func(err error) (*Table, error) {
		return nil, &RetrievalError{Table: name, Source: source, Err: err}
	}

	rc, err := l.open(ctx, source)
	if err != nil {
		return fail(err)
	}
	defer rc.Close()

	if isWorkbook(source) {
		t, err = ReadXLSX(name, source, rc)
	} else {
		t, err = ReadCSV(name, source, rc)
	}
	if err != nil {
		return fail(err)
	}

	if err := t.Require(name.RequiredColumns()...); err != nil {
		return fail(err)
	}

	span.SetAttributes(attribute.Int("dataset.rows", t.Len()))
	l.logger.DebugContext(ctx, "Table loaded",
		slog.String("table", string(name)),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns())))

	return t, nil
}

// open resolves a location to a byte stream.
func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.Contains(source, "://") {
		return os.Open(source)
	}

	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid source: %w", err)
	}

	switch u.Scheme {
	case "file":
		return os.Open(u.Path)
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", l.userAgent)

		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func isWorkbook(source string) bool {
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		source = u.Path
	}
	return strings.HasSuffix(strings.ToLower(source), ".xlsx")
}
