//go:build integration

package postgres_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shopmate/ingest/internal/database"
	"github.com/shopmate/ingest/internal/raworders/adapters/postgres"
	"github.com/shopmate/ingest/internal/raworders/domain"
	"github.com/shopmate/ingest/internal/raworders/ports"
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

func TestRepositoryInsert(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	rawOrder := domain.RawOrder{
		Payload:      []byte(`{"id": 1001, "total": "49.90", "line_items": [{"sku": "SKU-1"}]}`),
		SourceSystem: domain.DefaultSourceSystem,
		IngestedAt:   time.Now().UTC(),
	}

	if err := repo.Insert(ctx, &rawOrder); err != nil {
		t.Fatalf("failed to insert raw order: %v", err)
	}

	if rawOrder.UID == 0 {
		t.Fatal("expected the generated uid to be set on the order")
	}

	retrieved, err := repo.GetByUID(ctx, rawOrder.UID)
	if err != nil {
		t.Fatalf("failed to retrieve raw order: %v", err)
	}

	if retrieved.UID != rawOrder.UID {
		t.Errorf("expected uid %d, got %d", rawOrder.UID, retrieved.UID)
	}
	if retrieved.SourceSystem != domain.DefaultSourceSystem {
		t.Errorf("expected source system %s, got %s", domain.DefaultSourceSystem, retrieved.SourceSystem)
	}
	if !bytes.Contains(retrieved.Payload, []byte(`"SKU-1"`)) {
		t.Errorf("expected payload to survive the round trip, got %s", retrieved.Payload)
	}
}

func TestRepositoryInsert_AssignsMonotonicUIDs(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	first := domain.RawOrder{
		Payload:      []byte(`{"id": 1}`),
		SourceSystem: domain.DefaultSourceSystem,
		IngestedAt:   time.Now().UTC(),
	}
	second := domain.RawOrder{
		Payload:      []byte(`{"id": 2}`),
		SourceSystem: domain.DefaultSourceSystem,
		IngestedAt:   time.Now().UTC(),
	}

	if err := repo.Insert(ctx, &first); err != nil {
		t.Fatalf("failed to insert first raw order: %v", err)
	}
	if err := repo.Insert(ctx, &second); err != nil {
		t.Fatalf("failed to insert second raw order: %v", err)
	}

	if second.UID <= first.UID {
		t.Errorf("expected uid %d to be greater than %d", second.UID, first.UID)
	}
}

func TestRepositoryGetByUID_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	_, err := repo.GetByUID(ctx, 999999)
	if err != ports.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
