package queries

import (
	"context"
	"errors"

	"github.com/shopmate/ingest/internal/orders/domain"
	"github.com/shopmate/ingest/internal/orders/ports"
)

// GetOrderQuery represents a request to retrieve an order by its ID.
type GetOrderQuery struct {
	OrderID int64
}

// Validate ensures the query has valid parameters.
func (q GetOrderQuery) Validate() error {
	if q.OrderID <= 0 {
		return errors.New("order_id must be positive")
	}
	return nil
}

// GetOrderQueryHandler executes GetOrderQuery and returns the order with its
// lines if found.
type GetOrderQueryHandler struct {
	repo ports.Repository
}

func NewGetOrderQueryHandler(repo ports.Repository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.repo.GetByID(ctx, query.OrderID)
}
