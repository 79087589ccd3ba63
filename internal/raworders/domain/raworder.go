package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// DefaultSourceSystem labels payloads ingested through the storefront surface.
const DefaultSourceSystem = "shop_frontend"

// RawOrder is an opaque ingested payload. The payload is kept exactly as
// received; the raw layer never inspects or rewrites its contents.
type RawOrder struct {
	UID          int64           `json:"uid"`
	Payload      json.RawMessage `json:"payload"`
	SourceSystem string          `json:"source_system"`
	IngestedAt   time.Time       `json:"ingested_at"`
}

// Validate only checks that the payload is well-formed JSON. Its internal
// shape is deliberately unconstrained.
func (r RawOrder) Validate() error {
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	if !json.Valid(r.Payload) {
		return errors.New("payload must be valid JSON")
	}
	return nil
}
