package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopmate/ingest/internal/orders/app/commands"
	"github.com/shopmate/ingest/internal/orders/app/queries"
	"github.com/shopmate/ingest/internal/orders/domain"
	"github.com/shopmate/ingest/internal/orders/metrics"
	"github.com/shopmate/ingest/internal/orders/ports"
)

// Service bundles use cases for managing business-layer orders.
type Service struct {
	repo               ports.Repository
	events             ports.EventPublisher
	logger             *slog.Logger
	createOrderHandler commands.CommandHandler
	getOrderHandler    *queries.GetOrderQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.Repository,
	events ports.EventPublisher,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreHandler := commands.NewCreateOrderCommandHandler(repo, events)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		repo:               repo,
		events:             events,
		logger:             logger,
		createOrderHandler: observableHandler,
		getOrderHandler:    queries.NewGetOrderQueryHandler(repo),
	}
}

// CreateOrder persists a new order with its lines.
func (s *Service) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	return s.createOrderHandler.Handle(ctx, commands.CreateOrderCommand{Order: order})
}

// GetOrder retrieves an order and its lines by ID.
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, filter)
}

// CancelOrder soft-cancels an order by stamping cancelled_at. Lines are kept.
func (s *Service) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.IsCancelled() {
		return nil, fmt.Errorf("order %d is already cancelled", id)
	}
	if order.IsClosed() {
		return nil, fmt.Errorf("order %d is closed", id)
	}

	now := time.Now().UTC()
	if err := s.repo.Cancel(ctx, id, now); err != nil {
		return nil, err
	}

	if err := s.events.PublishOrderCanceled(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "order cancelled but event publish failed",
			"error", err,
			"order_id", id,
		)
	}

	order.CancelledAt = &now
	return order, nil
}
