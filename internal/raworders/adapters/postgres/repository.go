package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopmate/ingest/internal/raworders/domain"
	"github.com/shopmate/ingest/internal/raworders/ports"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, rawOrder *domain.RawOrder) error {
	query := `
		INSERT INTO raw_orders (payload, source_system, ingested_at)
		VALUES ($1, $2, $3)
		RETURNING uid
	`

	err := r.pool.QueryRow(ctx, query,
		rawOrder.Payload,
		rawOrder.SourceSystem,
		rawOrder.IngestedAt,
	).Scan(&rawOrder.UID)
	if err != nil {
		return fmt.Errorf("insert raw order: %w", err)
	}

	return nil
}

func (r *Repository) GetByUID(ctx context.Context, uid int64) (*domain.RawOrder, error) {
	query := `
		SELECT uid, payload, source_system, ingested_at
		FROM raw_orders
		WHERE uid = $1
	`

	var rawOrder domain.RawOrder
	err := r.pool.QueryRow(ctx, query, uid).Scan(
		&rawOrder.UID,
		&rawOrder.Payload,
		&rawOrder.SourceSystem,
		&rawOrder.IngestedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select raw order: %w", err)
	}

	return &rawOrder, nil
}
