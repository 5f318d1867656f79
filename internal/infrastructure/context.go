package infrastructure

import (
	"log/slog"
)

// WithComponent tags every record from logger with the owning component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With("component", component)
}
