package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"tradecli/internal/infrastructure"
)

// OperationTracer wraps step execution in spans and records step metrics
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer from the run's telemetry.
// A nil telemetry yields a tracer that records nothing.
func NewOperationTracer(tel *infrastructure.Telemetry) *OperationTracer {
	if tel == nil {
		return &OperationTracer{tracer: noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)}
	}
	return &OperationTracer{tracer: tel.Tracer, metrics: tel.Metrics}
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, stepCount int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.Int("operation.step_count", stepCount),
		),
	)
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stageID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.step."+stageID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stageID),
		),
	)
}

// RecordStageCompletion closes out a step span and records its duration
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stageID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))

	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(attribute.String("step.id", stageID)))
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}

	pt.metrics.RecordStep(ctx, stageID, duration, err == nil)
}

// RecordOperationCompletion closes out the run span and counts the run
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, state *OperationState, err error) {
	span.SetAttributes(
		attribute.String("operation.status", string(state.Status)),
		attribute.Int("operation.records", len(state.Records)),
		attribute.Float64("operation.duration_seconds", state.Duration().Seconds()),
	)

	if err != nil {
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "run completed")
	}

	pt.metrics.RecordRun(ctx, err == nil)
}
