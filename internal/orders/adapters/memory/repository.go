package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopmate/ingest/internal/orders/domain"
	"github.com/shopmate/ingest/internal/orders/ports"
)

// Repository provides an in-memory order store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[int64]domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: make(map[int64]domain.Order)}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return ports.ErrAlreadyExists
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := cloneOrder(order)
	return &copy, nil
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.FulfillmentStatus != nil && order.FulfillmentStatus != *filter.FulfillmentStatus {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Order{}, nil
	}

	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (r *Repository) Cancel(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.CancelledAt != nil {
		return ports.ErrNotFound
	}

	order.CancelledAt = &at
	r.orders[id] = order
	return nil
}

func cloneOrder(order domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	order.Lines = lines
	return order
}
