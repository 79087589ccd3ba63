package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/shopmate/ingest/internal/database"
	"github.com/shopmate/ingest/internal/raworders/domain"
	"github.com/shopmate/ingest/internal/raworders/ports"
	"github.com/shopmate/ingest/internal/telemetry"
)

// ObservableRepository decorates a raw-order repository with spans and
// query-duration metrics.
type ObservableRepository struct {
	repo    ports.Repository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.Repository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{repo: repo, metrics: metrics}
}

func (o *ObservableRepository) Insert(ctx context.Context, rawOrder *domain.RawOrder) error {
	ctx, span := telemetry.StartSpan(ctx, "RawOrderRepository.Insert")
	defer span.End()

	start := time.Now()
	err := o.repo.Insert(ctx, rawOrder)
	o.metrics.RecordQuery(ctx, "raw_orders.insert", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.AddSpanAttributes(span, attribute.Int64("raw_order.uid", rawOrder.UID))
	telemetry.SetSpanSuccess(span)
	return nil
}

func (o *ObservableRepository) GetByUID(ctx context.Context, uid int64) (*domain.RawOrder, error) {
	ctx, span := telemetry.StartSpan(ctx, "RawOrderRepository.GetByUID")
	defer span.End()

	start := time.Now()
	rawOrder, err := o.repo.GetByUID(ctx, uid)
	o.metrics.RecordQuery(ctx, "raw_orders.get_by_uid", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return rawOrder, nil
}
