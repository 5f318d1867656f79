// Package services implements the business logic between the HTTP handlers
// and the dataset and analysis packages.
//
// DashboardService loads the dataset snapshot on demand (the loader caches
// it after the first success), runs the selected analyses and assembles the
// dashboard: sections in catalog order followed by the fixed conclusion.
// HealthService reports liveness, readiness and build information;
// readiness requires a loaded snapshot.
//
// Services receive their collaborators and an *slog.Logger through their
// constructors and tag log records with a "component" attribute.
package services
