package memory

import (
	"context"
	"sync"

	"github.com/shopmate/ingest/internal/raworders/domain"
	"github.com/shopmate/ingest/internal/raworders/ports"
)

// Repository provides an in-memory raw layer useful for local development and tests.
type Repository struct {
	mu      sync.RWMutex
	nextUID int64
	orders  map[int64]domain.RawOrder
}

func NewRepository() *Repository {
	return &Repository{orders: make(map[int64]domain.RawOrder)}
}

func (r *Repository) Insert(_ context.Context, rawOrder *domain.RawOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextUID++
	rawOrder.UID = r.nextUID
	r.orders[rawOrder.UID] = *rawOrder
	return nil
}

func (r *Repository) GetByUID(_ context.Context, uid int64) (*domain.RawOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rawOrder, ok := r.orders[uid]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := rawOrder
	return &copy, nil
}
