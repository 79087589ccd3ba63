//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shopmate/ingest/internal/database"
	"github.com/shopmate/ingest/internal/orders/adapters/postgres"
	"github.com/shopmate/ingest/internal/orders/domain"
	"github.com/shopmate/ingest/internal/orders/ports"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("test"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
		testpostgres.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	projectRoot := findProjectRoot(t)
	migrationsPath := filepath.Join(projectRoot, "migrations")

	if err := database.RunMigrations(connStr, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func testOrder(id int64, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:                       id,
		CustomerID:               7,
		CurrentLineItemsQuantity: 2,
		CurrentTotalPrice:        49.90,
		CurrentTotalTax:          7.98,
		CurrentTotalWeight:       1.2,
		FulfillmentStatus:        domain.DefaultFulfillmentStatus,
		PaymentStatus:            domain.DefaultPaymentStatus,
		CreatedAt:                createdAt,
		Lines: []domain.OrderLine{
			{
				ID:             id*10 + 1,
				OrderID:        id,
				SKU:            "SKU-1",
				Product:        "Shirt",
				Variant:        "M",
				CurrentPrice:   24.95,
				CurrentTax:     3.99,
				CurrentTaxRate: "19%",
				Quantity:       2,
			},
		},
	}
}

func TestRepositoryCreate(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := testOrder(1001, time.Now().UTC())

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}

	if retrieved.ID != order.ID {
		t.Errorf("expected ID %d, got %d", order.ID, retrieved.ID)
	}
	if retrieved.CustomerID != order.CustomerID {
		t.Errorf("expected customer %d, got %d", order.CustomerID, retrieved.CustomerID)
	}
	if retrieved.FulfillmentStatus != domain.DefaultFulfillmentStatus {
		t.Errorf("expected fulfillment status %s, got %s", domain.DefaultFulfillmentStatus, retrieved.FulfillmentStatus)
	}
	if len(retrieved.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(retrieved.Lines))
	}
	if retrieved.Lines[0].SKU != "SKU-1" {
		t.Errorf("expected line sku SKU-1, got %s", retrieved.Lines[0].SKU)
	}
	if retrieved.Lines[0].CurrentTaxRate != "19%" {
		t.Errorf("expected line tax rate 19%%, got %s", retrieved.Lines[0].CurrentTaxRate)
	}
}

func TestRepositoryCreate_Duplicate(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := testOrder(1001, time.Now().UTC())

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	err := repo.Create(ctx, testOrder(1001, time.Now().UTC()))
	if !errors.Is(err, ports.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 424242)
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryList(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	base := time.Now().UTC()

	first := testOrder(1001, base)
	second := testOrder(1002, base.Add(1*time.Second))
	second.FulfillmentStatus = "shipped"
	third := testOrder(1003, base.Add(2*time.Second))

	for _, order := range []*domain.Order{first, second, third} {
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("failed to create order %d: %v", order.ID, err)
		}
	}

	t.Run("list all orders", func(t *testing.T) {
		result, err := repo.List(ctx, ports.ListFilter{})
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}

		if len(result) != 3 {
			t.Errorf("expected 3 orders, got %d", len(result))
		}

		if result[0].ID != 1003 {
			t.Errorf("expected first order to be 1003 (newest), got %d", result[0].ID)
		}

		for _, order := range result {
			if len(order.Lines) != 1 {
				t.Errorf("expected order %d to carry its line, got %d lines", order.ID, len(order.Lines))
			}
		}
	})

	t.Run("filter by fulfillment status", func(t *testing.T) {
		status := "shipped"
		result, err := repo.List(ctx, ports.ListFilter{FulfillmentStatus: &status})
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}

		if len(result) != 1 {
			t.Fatalf("expected 1 shipped order, got %d", len(result))
		}
		if result[0].ID != 1002 {
			t.Errorf("expected order 1002, got %d", result[0].ID)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := repo.List(ctx, ports.ListFilter{Page: 1, PageSize: 2})
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(result) != 2 {
			t.Errorf("expected 2 orders (page 1), got %d", len(result))
		}

		result, err = repo.List(ctx, ports.ListFilter{Page: 2, PageSize: 2})
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(result) != 1 {
			t.Errorf("expected 1 order (page 2), got %d", len(result))
		}
	})
}

func TestRepositoryCancel(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := testOrder(1001, time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	cancelledAt := time.Now().UTC()
	if err := repo.Cancel(ctx, order.ID, cancelledAt); err != nil {
		t.Fatalf("failed to cancel order: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}

	if retrieved.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be set")
	}
	if len(retrieved.Lines) != 1 {
		t.Errorf("expected lines to remain after cancel, got %d", len(retrieved.Lines))
	}

	err = repo.Cancel(ctx, order.ID, time.Now().UTC())
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound on repeated cancel, got %v", err)
	}
}

func TestRepositoryCancel_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	err := repo.Cancel(ctx, 424242, time.Now().UTC())
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
