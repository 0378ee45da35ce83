package telemetry

import (
	"context"
	"time"
)

// NoOp discards every measurement.
type NoOp struct{}

// NewNoOp returns a recorder for runs without telemetry.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (NoOp) AssessmentStarted(context.Context, string) {}
func (NoOp) AssessmentCompleted(context.Context, Assessment) {}
func (NoOp) PersistFailed(context.Context, string) {}
func (NoOp) SampleFetched(context.Context, string, bool, time.Duration) {}
func (NoOp) Close(context.Context) error { return nil }
