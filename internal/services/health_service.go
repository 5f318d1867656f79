package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"ecomdash/internal/infrastructure"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	datasets  DatasetLoader
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Ready reports whether the readiness status is "ready".
func (h HealthStatus) Ready() bool {
	return h.Status == "ready"
}

// NewHealthService creates a new health service. datasets may be nil, in
// which case the service is never ready.
func NewHealthService(version, buildTime string, datasets DatasetLoader, logger *slog.Logger) *HealthService {
	logger = infrastructure.WithComponent(logger, "health_service")
	logger.Debug("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		datasets:  datasets,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once the dataset snapshot is loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"datasets": hs.checkDatasets(),
		},
	}

	for _, svc := range status.Services {
		if svc.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "Readiness check failed", slog.String("reason", svc.Message))
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkDatasets() ServiceHealth {
	if hs.datasets == nil {
		return ServiceHealth{Status: "not_ready", Message: ErrDatasetNotLoaded.Error()}
	}
	snap, ok := hs.datasets.Snapshot()
	if !ok {
		return ServiceHealth{Status: "not_ready", Message: ErrDatasetNotLoaded.Error()}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "loaded at " + snap.LoadedAt().Format(time.RFC3339),
	}
}
