package services

import "errors"

var (
	// ErrDatasetNotLoaded is returned when the snapshot is required but the
	// startup load has not completed.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrNilPipeline guards against wiring mistakes in the constructors.
	ErrNilPipeline = errors.New("analysis pipeline is nil")
)
