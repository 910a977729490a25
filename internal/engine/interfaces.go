package engine

import (
	"context"

	"github.com/Veraticus/phone-manager/internal/model"
)

// Source fetches the current sheet grid.
type Source interface {
	Fetch(ctx context.Context) (model.Grid, error)
}

// Extractor returns a raw model response for a message, or "" when the call
// failed. It never returns an error.
type Extractor interface {
	Extract(ctx context.Context, content string) string
}

// Store appends a cycle's records atomically.
type Store interface {
	SaveRecords(ctx context.Context, records []model.TransactionRecord) error
}

// SnapshotCache holds the previous cycle's grid.
type SnapshotCache interface {
	Load() (model.Grid, bool, error)
	Save(grid model.Grid) error
}

// AuditLog records completed cycles.
type AuditLog interface {
	Append(cycleID string, inserted int) error
}
