package repository

import (
	"context"

	"golang-filing-scryper/internal/entity"

	"gorm.io/gorm"
)

// RunHistoryRepository defines the interface for ingestion run history operations.
type RunHistoryRepository interface {
	Create(ctx context.Context, run *entity.IngestionRun) error
	FindRecent(ctx context.Context, limit int) ([]entity.IngestionRun, error)
}

// NewRunHistoryRepository creates a new GORM-based run history repository.
func NewRunHistoryRepository(db *gorm.DB) RunHistoryRepository {
	return &runHistoryRepository{db: db}
}

type runHistoryRepository struct {
	db *gorm.DB
}

func (r *runHistoryRepository) Create(ctx context.Context, run *entity.IngestionRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// FindRecent returns the latest runs, newest first.
func (r *runHistoryRepository) FindRecent(ctx context.Context, limit int) ([]entity.IngestionRun, error) {
	var runs []entity.IngestionRun
	if err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// NewNopRunHistoryRepository returns a recorder that keeps nothing, used when no database is configured.
func NewNopRunHistoryRepository() RunHistoryRepository {
	return nopRunHistoryRepository{}
}

type nopRunHistoryRepository struct{}

func (nopRunHistoryRepository) Create(context.Context, *entity.IngestionRun) error { return nil }
func (nopRunHistoryRepository) FindRecent(context.Context, int) ([]entity.IngestionRun, error) {
	return []entity.IngestionRun{}, nil
}
