package http

import (
	"encoding/json"
	"time"

	"github.com/shopmate/ingest/internal/raworders/domain"
)

// RawOrderOut is the externally visible shape of a raw order record.
type RawOrderOut struct {
	UID          int64           `json:"uid"`
	Payload      json.RawMessage `json:"payload"`
	SourceSystem string          `json:"source_system"`
	IngestedAt   time.Time       `json:"ingested_at"`
}

func toRawOrderOut(rawOrder *domain.RawOrder) RawOrderOut {
	return RawOrderOut{
		UID:          rawOrder.UID,
		Payload:      rawOrder.Payload,
		SourceSystem: rawOrder.SourceSystem,
		IngestedAt:   rawOrder.IngestedAt,
	}
}
