package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"qrstats/internal/domain"
	"qrstats/internal/repository"
)

// uniqueViolation is the SQLSTATE for a duplicate primary key
const uniqueViolation = "23505"

// Migrate creates or updates the targets and redirect_counters tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.TargetRecord{}, &domain.RedirectCounter{})
}

// targetRepository implements repository.RecordStore for PostgreSQL
type targetRepository struct {
	db *gorm.DB
}

// NewTargetRepository creates a new PostgreSQL record store
func NewTargetRepository(db *gorm.DB) repository.RecordStore {
	return &targetRepository{db: db}
}

// Create inserts a new record. The primary key makes the insert a create-if-absent:
// a duplicate identifier fails with domain.ErrIDTaken and leaves the stored row untouched.
func (r *targetRepository) Create(ctx context.Context, record *domain.TargetRecord) error {
	result := r.db.WithContext(ctx).Create(record)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return domain.ErrIDTaken
		}
		return domain.NewStoreError("create", result.Error)
	}
	return nil
}

// Get retrieves a record by its identifier
func (r *targetRepository) Get(ctx context.Context, id string) (*domain.TargetRecord, error) {
	var record domain.TargetRecord

	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&record)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTargetNotFound
		}
		return nil, domain.NewStoreError("get", result.Error)
	}

	return &record, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
