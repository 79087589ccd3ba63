package ports

import (
	"context"
	"errors"

	"github.com/shopmate/ingest/internal/raworders/domain"
)

// Repository exposes the append-only raw layer persistence operations.
type Repository interface {
	Insert(ctx context.Context, rawOrder *domain.RawOrder) error
	GetByUID(ctx context.Context, uid int64) (*domain.RawOrder, error)
}

// EventPublisher notifies downstream consumers about ingested payloads.
type EventPublisher interface {
	PublishRawOrderIngested(ctx context.Context, uid int64, sourceSystem string) error
}

var (
	// ErrNotFound is returned when the requested raw order does not exist.
	ErrNotFound = errors.New("raw order not found")
)
