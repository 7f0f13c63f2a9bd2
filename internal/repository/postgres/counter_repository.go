package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qrstats/internal/domain"
	"qrstats/internal/repository"
)

// counterRepository implements repository.CounterStore for PostgreSQL
type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new PostgreSQL counter store
func NewCounterRepository(db *gorm.DB) repository.CounterStore {
	return &counterRepository{db: db}
}

// Get returns the redirect count, zero when no row exists yet
func (r *counterRepository) Get(ctx context.Context, id string) (int64, error) {
	var counter domain.RedirectCounter

	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&counter)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, domain.NewStoreError("count", result.Error)
	}

	return counter.Count, nil
}

// Increment upserts the counter in a single statement:
// INSERT ... ON CONFLICT (id) DO UPDATE SET count = redirect_counters.count + 1
func (r *counterRepository) Increment(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count": gorm.Expr("redirect_counters.count + ?", 1),
			}),
		}).
		Create(&domain.RedirectCounter{ID: id, Count: 1})

	if result.Error != nil {
		return domain.NewStoreError("increment", result.Error)
	}

	return nil
}
