package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ingestedTotal  metric.Int64Counter
	ingestDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ingestedTotal, err = meter.Int64Counter(
		"raw_orders_ingested_total",
		metric.WithDescription("Total number of raw order payloads ingested"),
		metric.WithUnit("{payload}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create raw_orders_ingested_total counter: %w", err)
	}

	m.ingestDuration, err = meter.Float64Histogram(
		"raw_order_ingest_duration_seconds",
		metric.WithDescription("Duration of raw order ingestion operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create raw_order_ingest_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordIngest(ctx context.Context, sourceSystem string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ingestedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source_system", sourceSystem),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordIngestDuration(ctx context.Context, durationSeconds float64) {
	m.ingestDuration.Record(ctx, durationSeconds)
}
