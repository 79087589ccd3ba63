package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/shopmate/ingest/internal/orders/domain"
	"github.com/shopmate/ingest/internal/orders/ports"
)

// CreateOrderCommand carries a storefront-validated order into the business layer.
type CreateOrderCommand struct {
	Order domain.Order
}

func (c CreateOrderCommand) Validate() error {
	return c.Order.Validate()
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	repo   ports.Repository
	events ports.EventPublisher
}

func NewCreateOrderCommandHandler(
	repo ports.Repository,
	events ports.EventPublisher,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:   repo,
		events: events,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order := cmd.Order

	if order.FulfillmentStatus == "" {
		order.FulfillmentStatus = domain.DefaultFulfillmentStatus
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.DefaultPaymentStatus
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
	}

	if err := h.repo.Create(ctx, &order); err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderCreated(ctx, order.ID); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}
