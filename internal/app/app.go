package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"ecomdash/internal/analysis"
	"ecomdash/internal/config"
	"ecomdash/internal/dataset"
	apierrors "ecomdash/internal/errors"
	"ecomdash/internal/infrastructure"
	customMiddleware "ecomdash/internal/middleware"
	"ecomdash/internal/services"
	handlers "ecomdash/internal/transport/http"
)

const (
	VERSION = "v1.0.0"
	AppName = "E-commerce Analytics Dashboard"
)

// BuildTime is set at compile time
var BuildTime = time.Now().Format(time.RFC3339)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Datasets      services.DatasetLoader
	Pipeline      *analysis.Pipeline
	Services      *ServiceContainer
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// Option customizes an Application before its services are built.
type Option func(*Application)

// WithDatasets replaces the configured dataset loader.
func WithDatasets(loader services.DatasetLoader) Option {
	return func(a *Application) { a.Datasets = loader }
}

// NewApplication creates a new application from the environment
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an explicit configuration
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	if a.Datasets == nil {
		loader, err := dataset.NewLoaderFromConfig(a.Config.Datasets,
			dataset.WithLogger(a.Logger),
			dataset.WithTracer(a.OTelProviders.Tracer),
			dataset.WithMetrics(a.Metrics),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize dataset loader: %w", err)
		}
		a.Datasets = loader
	}

	a.Pipeline = analysis.NewPipeline(
		analysis.WithLogger(a.Logger),
		analysis.WithTracer(a.OTelProviders.Tracer),
		analysis.WithMetrics(a.Metrics),
	)

	dashboardService, err := services.NewDashboardService(a.Datasets, a.Pipeline, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard service: %w", err)
	}

	a.Services = &ServiceContainer{
		Dashboard: dashboardService,
		Health:    services.NewHealthService(VERSION, BuildTime, a.Datasets, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Compress(5))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r)
		a.setupHTMLRoutes(r)
	})

	// Prometheus scrapes skip the request middleware
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		healthHandler.RegisterRoutes(r)
		dashboardHandler.RegisterRoutes(r)
	})
}

// setupHTMLRoutes configures the dashboard page
func (a *Application) setupHTMLRoutes(r chi.Router) {
	htmlHandler := handlers.NewHTMLHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler)
	r.Get("/", htmlHandler.ServeDashboard)
}

// getCORSConfig returns CORS configuration
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// LoadDatasets fetches the seven tables, bounded by the fetch timeout. A
// retrieval failure is fatal: nothing can be rendered without the tables.
func (a *Application) LoadDatasets(ctx context.Context) error {
	if timeout := a.Config.Datasets.FetchTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := a.Datasets.Load(ctx)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Dataset load failed",
			slog.String("error", err.Error()),
			slog.Bool("retrieval_error", dataset.IsRetrievalError(err)))
		return fmt.Errorf("failed to load datasets: %w", err)
	}

	rows := 0
	for _, t := range snap.Summary() {
		rows += t.Rows
	}
	a.Logger.InfoContext(ctx, "Datasets loaded",
		slog.Int("tables", len(snap.Summary())),
		slog.Int("rows", rows),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Start loads the datasets and starts serving
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if err := a.LoadDatasets(ctx); err != nil {
		return err
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	// the run context may already be cancelled
	return a.Stop(context.Background())
}
