package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopmate/ingest/internal/orders/domain"
)

// Repository exposes persistence operations required by the application layer.
// Create persists the order together with its lines atomically.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	Cancel(ctx context.Context, id int64, at time.Time) error
}

// ListFilter narrows list queries by fulfillment status and pagination.
type ListFilter struct {
	FulfillmentStatus *string
	Page              int
	PageSize          int
}

// EventPublisher notifies downstream consumers about order lifecycle changes.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, orderID int64) error
	PublishOrderCanceled(ctx context.Context, orderID int64) error
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrAlreadyExists is returned when an order with the same id was already stored.
	ErrAlreadyExists = errors.New("order already exists")
)
