package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/shopmate/ingest/internal/raworders/domain"
	"github.com/shopmate/ingest/internal/raworders/metrics"
	"github.com/shopmate/ingest/internal/raworders/ports"
	"github.com/shopmate/ingest/internal/telemetry"
)

// Service implements the raw layer use cases: verbatim ingestion and lookup.
type Service struct {
	repo    ports.Repository
	events  ports.EventPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(repo ports.Repository, events ports.EventPublisher, logger *slog.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		logger:  logger,
		metrics: metrics,
	}
}

// Ingest persists the payload exactly as received, with a server-assigned
// identifier and ingestion timestamp. The raw layer is append-only.
func (s *Service) Ingest(ctx context.Context, payload json.RawMessage, sourceSystem string) (*domain.RawOrder, error) {
	ctx, span := telemetry.StartSpan(ctx, "RawOrders.Ingest")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		s.metrics.RecordIngestDuration(ctx, time.Since(start).Seconds())
		s.metrics.RecordIngest(ctx, sourceSystem, success)
	}()

	if sourceSystem == "" {
		sourceSystem = domain.DefaultSourceSystem
	}

	rawOrder := &domain.RawOrder{
		Payload:      payload,
		SourceSystem: sourceSystem,
		IngestedAt:   time.Now().UTC(),
	}

	if err := rawOrder.Validate(); err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	if err := s.repo.Insert(ctx, rawOrder); err != nil {
		telemetry.RecordSpanError(span, err)
		s.logger.ErrorContext(ctx, "failed to ingest raw order",
			"error", err,
			"source_system", sourceSystem,
		)
		return nil, err
	}

	if err := s.events.PublishRawOrderIngested(ctx, rawOrder.UID, sourceSystem); err != nil {
		s.logger.WarnContext(ctx, "raw order stored but event publish failed",
			"error", err,
			"uid", rawOrder.UID,
		)
	}

	telemetry.AddSpanAttributes(span,
		attribute.Int64("raw_order.uid", rawOrder.UID),
		attribute.String("raw_order.source_system", sourceSystem),
	)

	s.logger.InfoContext(ctx, "raw order ingested",
		"uid", rawOrder.UID,
		"source_system", sourceSystem,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return rawOrder, nil
}

// Fetch looks up a raw order by identifier. Missing records surface as
// ports.ErrNotFound.
func (s *Service) Fetch(ctx context.Context, uid int64) (*domain.RawOrder, error) {
	ctx, span := telemetry.StartSpan(ctx, "RawOrders.Fetch")
	defer span.End()

	rawOrder, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return rawOrder, nil
}
