package events

import (
	"context"
	"log/slog"
)

// NoopPublisher logs domain events without sending them anywhere. It keeps
// the publisher ports satisfied until a real broker is wired in.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (n *NoopPublisher) PublishRawOrderIngested(_ context.Context, uid int64, sourceSystem string) error {
	slog.Debug("event::raw_order_ingested", "uid", uid, "source_system", sourceSystem)
	return nil
}

func (n *NoopPublisher) PublishOrderCreated(_ context.Context, orderID int64) error {
	slog.Debug("event::order_created", "order_id", orderID)
	return nil
}

func (n *NoopPublisher) PublishOrderCanceled(_ context.Context, orderID int64) error {
	slog.Debug("event::order_canceled", "order_id", orderID)
	return nil
}
