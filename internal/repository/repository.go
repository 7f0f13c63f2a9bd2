package repository

import (
	"context"

	"qrstats/internal/domain"
)

// RecordStore persists target records keyed by identifier.
// Implementations must make Create an atomic create-if-absent so identifier
// allocation has no window between the existence check and the write.
type RecordStore interface {
	// Create stores record under record.ID.
	// Returns domain.ErrIDTaken if the identifier is already in use; an existing record is never overwritten.
	Create(ctx context.Context, record *domain.TargetRecord) error

	// Get returns the record for id or domain.ErrTargetNotFound
	Get(ctx context.Context, id string) (*domain.TargetRecord, error)
}

// CounterStore persists per-identifier redirect counts.
// Increment must not lose updates under concurrent calls for the same id.
type CounterStore interface {
	// Get returns the current count, zero if none has been recorded
	Get(ctx context.Context, id string) (int64, error)

	// Increment adds one to the count for id, creating it at 1 when absent
	Increment(ctx context.Context, id string) error
}

// Key namespaces shared by the key/value backends
const (
	TargetKeyPrefix  = "qrstats:targets:"
	CounterKeyPrefix = "qrstats:counts:"
)

// TargetKey returns the key under which the record for id is stored
func TargetKey(id string) string {
	return TargetKeyPrefix + id
}

// CounterKey returns the key under which the redirect count for id is stored
func CounterKey(id string) string {
	return CounterKeyPrefix + id
}
