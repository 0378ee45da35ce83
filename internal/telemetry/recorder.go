// Package telemetry exports assessment metrics over OTLP.
package telemetry

import (
	"context"
	"time"
)

// Assessment describes a completed assessment for metrics.
type Assessment struct {
	Category        string
	Score           int
	Attempted       int
	Total           int
	DurationMinutes int
}

// Recorder receives assessment lifecycle measurements.
type Recorder interface {
	AssessmentStarted(ctx context.Context, category string)
	AssessmentCompleted(ctx context.Context, a Assessment)
	PersistFailed(ctx context.Context, category string)
	SampleFetched(ctx context.Context, category string, ok bool, elapsed time.Duration)
	Close(ctx context.Context) error
}

// New returns an OTLP exporter when cfg enables one, and a no-op recorder
// otherwise.
func New(ctx context.Context, cfg Config) (Recorder, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return NewNoOp(), nil
	}
	return NewExporter(ctx, cfg)
}
