package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "mockprep"
	serviceVersion = "1.0.0"
)

// Exporter records assessment metrics with an OpenTelemetry meter.
type Exporter struct {
	provider *sdkmetric.MeterProvider

	started      metric.Int64Counter
	completed    metric.Int64Counter
	persistFails metric.Int64Counter
	scoreHist    metric.Int64Histogram
	durationHist metric.Int64Histogram
	answered     metric.Float64Histogram
	sampleHist   metric.Float64Histogram
}

var _ Recorder = (*Exporter)(nil)

// NewExporter creates an exporter that pushes to an OTLP gRPC collector.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	e, err := NewExporterWithReader(ctx, sdkmetric.NewPeriodicReader(exp))
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(e.provider)
	return e, nil
}

// NewExporterWithReader builds the instruments on top of reader.
func NewExporterWithReader(ctx context.Context, reader sdkmetric.Reader) (*Exporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)
	e := &Exporter{provider: provider}

	if e.started, err = meter.Int64Counter("mockprep_assessments_started_total",
		metric.WithDescription("Assessments started"),
		metric.WithUnit("{assessment}")); err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}
	if e.completed, err = meter.Int64Counter("mockprep_assessments_completed_total",
		metric.WithDescription("Assessments completed and stored"),
		metric.WithUnit("{assessment}")); err != nil {
		return nil, fmt.Errorf("creating completed counter: %w", err)
	}
	if e.persistFails, err = meter.Int64Counter("mockprep_assessment_persist_failures_total",
		metric.WithDescription("Failed attempts to store a completed assessment"),
		metric.WithUnit("{failure}")); err != nil {
		return nil, fmt.Errorf("creating persist failure counter: %w", err)
	}
	if e.scoreHist, err = meter.Int64Histogram("mockprep_assessment_score",
		metric.WithDescription("Aggregate assessment score"),
		metric.WithUnit("{point}")); err != nil {
		return nil, fmt.Errorf("creating score histogram: %w", err)
	}
	if e.durationHist, err = meter.Int64Histogram("mockprep_assessment_duration_minutes",
		metric.WithDescription("Assessment duration"),
		metric.WithUnit("min")); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	if e.answered, err = meter.Float64Histogram("mockprep_assessment_answered_ratio",
		metric.WithDescription("Share of questions answered"),
		metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("creating answered histogram: %w", err)
	}
	if e.sampleHist, err = meter.Float64Histogram("mockprep_sample_answer_seconds",
		metric.WithDescription("Sample answer generation latency"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating sample histogram: %w", err)
	}

	return e, nil
}

func (e *Exporter) AssessmentStarted(ctx context.Context, category string) {
	e.started.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

func (e *Exporter) AssessmentCompleted(ctx context.Context, a Assessment) {
	opt := metric.WithAttributes(attribute.String("category", a.Category))

	e.completed.Add(ctx, 1, opt)
	e.scoreHist.Record(ctx, int64(a.Score), opt)
	e.durationHist.Record(ctx, int64(a.DurationMinutes), opt)
	if a.Total > 0 {
		e.answered.Record(ctx, float64(a.Attempted)/float64(a.Total), opt)
	}
}

func (e *Exporter) PersistFailed(ctx context.Context, category string) {
	e.persistFails.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

func (e *Exporter) SampleFetched(ctx context.Context, category string, ok bool, elapsed time.Duration) {
	e.sampleHist.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("success", ok),
	))
}

// Close flushes pending metrics and shuts the provider down.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
