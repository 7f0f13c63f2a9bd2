package shortener

import (
	"context"
	"errors"
	"fmt"

	"qrstats/internal/domain"
	"qrstats/internal/repository"
	"qrstats/pkg/logger"
)

// DefaultMaxAttempts is used when the allocator is configured with fewer than one attempt
const DefaultMaxAttempts = 5

// Allocator assigns free identifiers to new records.
// Each attempt is a single create-if-absent call, so two allocations can never
// both succeed with the same identifier.
type Allocator struct {
	generator   Generator
	store       repository.RecordStore
	maxAttempts int
	logger      *logger.Logger
}

// NewAllocator creates an allocator trying at most maxAttempts candidates per record
func NewAllocator(generator Generator, store repository.RecordStore, maxAttempts int, logger *logger.Logger) *Allocator {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Allocator{
		generator:   generator,
		store:       store,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "allocator"),
	}
}

// Allocate stores record under a fresh identifier and returns it.
// record.ID is overwritten with each candidate. Returns domain.ErrGenerationExhausted
// when every candidate was taken; store failures are returned unchanged.
func (a *Allocator) Allocate(ctx context.Context, record *domain.TargetRecord) (string, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		id, err := a.generator.Generate()
		if err != nil {
			return "", domain.NewInternalError(err)
		}

		record.ID = id
		err = a.store.Create(ctx, record)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrIDTaken) {
			return "", err
		}

		a.logger.Warn("Identifier collision detected, retrying",
			"id", id,
			"attempt", attempt,
		)
	}

	record.ID = ""
	return "", fmt.Errorf("%w after %d attempts", domain.ErrGenerationExhausted, a.maxAttempts)
}
