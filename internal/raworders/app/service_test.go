package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/shopmate/ingest/internal/raworders/app"
	"github.com/shopmate/ingest/internal/raworders/domain"
	"github.com/shopmate/ingest/internal/raworders/metrics"
	"github.com/shopmate/ingest/internal/raworders/ports"
)

type mockRepository struct {
	insertFn   func(ctx context.Context, rawOrder *domain.RawOrder) error
	getByUIDFn func(ctx context.Context, uid int64) (*domain.RawOrder, error)
}

func (m *mockRepository) Insert(ctx context.Context, rawOrder *domain.RawOrder) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, rawOrder)
	}
	rawOrder.UID = 1
	return nil
}

func (m *mockRepository) GetByUID(ctx context.Context, uid int64) (*domain.RawOrder, error) {
	if m.getByUIDFn != nil {
		return m.getByUIDFn(ctx, uid)
	}
	return nil, ports.ErrNotFound
}

type mockPublisher struct {
	publishFn func(ctx context.Context, uid int64, sourceSystem string) error
}

func (m *mockPublisher) PublishRawOrderIngested(ctx context.Context, uid int64, sourceSystem string) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, uid, sourceSystem)
	}
	return nil
}

func newService(t *testing.T, repo ports.Repository, events ports.EventPublisher) *app.Service {
	t.Helper()

	m, err := metrics.NewMetrics(otel.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	return app.NewService(repo, events, slog.New(slog.DiscardHandler), m)
}

func TestIngest(t *testing.T) {
	t.Run("stores payload verbatim with server-assigned uid", func(t *testing.T) {
		var stored *domain.RawOrder
		repo := &mockRepository{
			insertFn: func(_ context.Context, rawOrder *domain.RawOrder) error {
				rawOrder.UID = 42
				stored = rawOrder
				return nil
			},
		}
		service := newService(t, repo, &mockPublisher{})

		payload := json.RawMessage(`{"a":1}`)
		rawOrder, err := service.Ingest(context.Background(), payload, "")

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if rawOrder.UID != 42 {
			t.Errorf("expected uid 42, got %d", rawOrder.UID)
		}

		if string(stored.Payload) != `{"a":1}` {
			t.Errorf("expected payload stored verbatim, got %s", stored.Payload)
		}

		if rawOrder.SourceSystem != domain.DefaultSourceSystem {
			t.Errorf("expected default source system, got %q", rawOrder.SourceSystem)
		}

		if rawOrder.IngestedAt.IsZero() {
			t.Error("expected ingestion timestamp to be set")
		}
	})

	t.Run("rejects invalid JSON payload", func(t *testing.T) {
		service := newService(t, &mockRepository{}, &mockPublisher{})

		if _, err := service.Ingest(context.Background(), json.RawMessage(`{"a":`), ""); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		repo := &mockRepository{
			insertFn: func(_ context.Context, _ *domain.RawOrder) error {
				return errors.New("connection refused")
			},
		}
		service := newService(t, repo, &mockPublisher{})

		if _, err := service.Ingest(context.Background(), json.RawMessage(`{}`), ""); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("publish failure does not fail ingestion", func(t *testing.T) {
		events := &mockPublisher{
			publishFn: func(_ context.Context, _ int64, _ string) error {
				return errors.New("bus unavailable")
			},
		}
		service := newService(t, &mockRepository{}, events)

		if _, err := service.Ingest(context.Background(), json.RawMessage(`{}`), ""); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
	})
}

func TestFetch(t *testing.T) {
	t.Run("returns stored record", func(t *testing.T) {
		repo := &mockRepository{
			getByUIDFn: func(_ context.Context, uid int64) (*domain.RawOrder, error) {
				return &domain.RawOrder{UID: uid, Payload: json.RawMessage(`{"a":1}`)}, nil
			},
		}
		service := newService(t, repo, &mockPublisher{})

		rawOrder, err := service.Fetch(context.Background(), 7)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if rawOrder.UID != 7 {
			t.Errorf("expected uid 7, got %d", rawOrder.UID)
		}
	})

	t.Run("missing record is ErrNotFound", func(t *testing.T) {
		service := newService(t, &mockRepository{}, &mockPublisher{})

		if _, err := service.Fetch(context.Background(), 999999); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}
