package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopmate/ingest/internal/orders/domain"
	"github.com/shopmate/ingest/internal/orders/ports"
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the order and all of its lines in a single transaction.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderQuery := `
		INSERT INTO orders (
			id, customer_id, current_lineitems_quantity,
			current_total_price, current_total_tax, current_total_weight,
			fulfillment_status, payment_status, refund_status,
			created_at, cancelled_at, closed_at, gclid, landing_page_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = tx.Exec(ctx, orderQuery,
		order.ID,
		order.CustomerID,
		order.CurrentLineItemsQuantity,
		order.CurrentTotalPrice,
		order.CurrentTotalTax,
		order.CurrentTotalWeight,
		order.FulfillmentStatus,
		order.PaymentStatus,
		order.RefundStatus,
		order.CreatedAt,
		order.CancelledAt,
		order.ClosedAt,
		order.GCLID,
		order.LandingPageURL,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	lineQuery := `
		INSERT INTO order_lines (
			id, order_id, sku, product, variant, line_item_group, contract_id,
			current_price, current_tax, current_tax_perc, quantity,
			fulfillment_status, remaining_quantity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, line := range order.Lines {
		_, err = tx.Exec(ctx, lineQuery,
			line.ID,
			order.ID,
			line.SKU,
			line.Product,
			line.Variant,
			line.LineItemGroup,
			line.ContractID,
			line.CurrentPrice,
			line.CurrentTax,
			line.CurrentTaxRate,
			line.Quantity,
			line.FulfillmentStatus,
			line.RemainingQuantity,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return ports.ErrAlreadyExists
			}
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT id, customer_id, current_lineitems_quantity,
		       current_total_price, current_total_tax, current_total_weight,
		       fulfillment_status, payment_status, refund_status,
		       created_at, cancelled_at, closed_at, gclid, landing_page_url
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.CurrentLineItemsQuantity,
		&order.CurrentTotalPrice,
		&order.CurrentTotalTax,
		&order.CurrentTotalWeight,
		&order.FulfillmentStatus,
		&order.PaymentStatus,
		&order.RefundStatus,
		&order.CreatedAt,
		&order.CancelledAt,
		&order.ClosedAt,
		&order.GCLID,
		&order.LandingPageURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.linesForOrders(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Lines = lines[id]

	return &order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT id, customer_id, current_lineitems_quantity,
		       current_total_price, current_total_tax, current_total_weight,
		       fulfillment_status, payment_status, refund_status,
		       created_at, cancelled_at, closed_at, gclid, landing_page_url
		FROM orders
		WHERE ($1::text IS NULL OR fulfillment_status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, filter.FulfillmentStatus, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []int64
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.CurrentLineItemsQuantity,
			&order.CurrentTotalPrice,
			&order.CurrentTotalTax,
			&order.CurrentTotalWeight,
			&order.FulfillmentStatus,
			&order.PaymentStatus,
			&order.RefundStatus,
			&order.CreatedAt,
			&order.CancelledAt,
			&order.ClosedAt,
			&order.GCLID,
			&order.LandingPageURL,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(ids) > 0 {
		lines, err := r.linesForOrders(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			orders[i].Lines = lines[orders[i].ID]
		}
	}

	return orders, nil
}

// Cancel stamps cancelled_at on an order that has not been cancelled yet.
func (r *Repository) Cancel(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE orders
		SET cancelled_at = $1
		WHERE id = $2 AND cancelled_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) linesForOrders(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLine, error) {
	query := `
		SELECT id, order_id, sku, product, variant, line_item_group, contract_id,
		       current_price, current_tax, current_tax_perc, quantity,
		       fulfillment_status, remaining_quantity
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[int64][]domain.OrderLine)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.SKU,
			&line.Product,
			&line.Variant,
			&line.LineItemGroup,
			&line.ContractID,
			&line.CurrentPrice,
			&line.CurrentTax,
			&line.CurrentTaxRate,
			&line.Quantity,
			&line.FulfillmentStatus,
			&line.RemainingQuantity,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines[line.OrderID] = append(lines[line.OrderID], line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}
