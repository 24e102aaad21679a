package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"tradecli/pkg/contracts/domain"
)

// PipelineMetrics holds the instruments recorded during a pipeline run
type PipelineMetrics struct {
	RunsTotal        metric.Int64Counter
	StepsTotal       metric.Int64Counter
	StepDuration     metric.Float64Histogram
	RecordsRead      metric.Int64Counter
	RecordsDropped   metric.Int64Counter
	RecordsWritten   metric.Int64Counter
	RecordsCategory  metric.Int64Counter
	UnparsedDates    metric.Int64Counter
	GrandTotalAmount metric.Float64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter("pipeline_runs",
		metric.WithDescription("Pipeline runs by outcome")); err != nil {
		return nil, err
	}
	if m.StepsTotal, err = meter.Int64Counter("pipeline_steps",
		metric.WithDescription("Pipeline step executions by outcome")); err != nil {
		return nil, err
	}
	if m.StepDuration, err = meter.Float64Histogram("pipeline_step_duration",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.RecordsRead, err = meter.Int64Counter("pipeline_records_read",
		metric.WithDescription("Shipment rows read from the workbook")); err != nil {
		return nil, err
	}
	if m.RecordsDropped, err = meter.Int64Counter("pipeline_records_dropped",
		metric.WithDescription("Shipment rows dropped for missing required values")); err != nil {
		return nil, err
	}
	if m.RecordsWritten, err = meter.Int64Counter("pipeline_records_written",
		metric.WithDescription("Cleaned records written by sink")); err != nil {
		return nil, err
	}
	if m.RecordsCategory, err = meter.Int64Counter("pipeline_records_by_category",
		metric.WithDescription("Cleaned records by assigned category")); err != nil {
		return nil, err
	}
	if m.UnparsedDates, err = meter.Int64Counter("pipeline_unparsed_dates",
		metric.WithDescription("Shipment dates that could not be parsed")); err != nil {
		return nil, err
	}
	if m.GrandTotalAmount, err = meter.Float64Counter("pipeline_grand_total",
		metric.WithDescription("Sum of grand totals over cleaned records")); err != nil {
		return nil, err
	}

	return m, nil
}

func statusAttr(success bool) attribute.KeyValue {
	if success {
		return attribute.String("status", "success")
	}
	return attribute.String("status", "failure")
}

// RecordRun records the outcome of a pipeline run
func (m *PipelineMetrics) RecordRun(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(statusAttr(success)))
}

// RecordStep records one step execution and its duration
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("step", stepID), statusAttr(success))
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
}

// AddRecordsRead counts rows loaded from the source
func (m *PipelineMetrics) AddRecordsRead(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.RecordsRead.Add(ctx, int64(n))
}

// AddRecordsDropped counts rows removed by the completeness filter
func (m *PipelineMetrics) AddRecordsDropped(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.RecordsDropped.Add(ctx, int64(n))
}

// AddRecordsWritten counts records persisted by a sink
func (m *PipelineMetrics) AddRecordsWritten(ctx context.Context, sink string, n int) {
	if m == nil {
		return
	}
	m.RecordsWritten.Add(ctx, int64(n), metric.WithAttributes(attribute.String("sink", sink)))
}

// AddCategoryCounts counts records per assigned category
func (m *PipelineMetrics) AddCategoryCounts(ctx context.Context, counts map[domain.Category]int) {
	if m == nil {
		return
	}
	for category, n := range counts {
		m.RecordsCategory.Add(ctx, int64(n), metric.WithAttributes(attribute.String("category", string(category))))
	}
}

// AddUnparsedDates counts shipment dates left underived
func (m *PipelineMetrics) AddUnparsedDates(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.UnparsedDates.Add(ctx, int64(n))
}

// AddGrandTotal accumulates the batch's grand total sum
func (m *PipelineMetrics) AddGrandTotal(ctx context.Context, amount float64) {
	if m == nil || amount < 0 {
		return
	}
	m.GrandTotalAmount.Add(ctx, amount)
}
