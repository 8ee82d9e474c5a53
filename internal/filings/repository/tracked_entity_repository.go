package repository

import (
	"context"

	"golang-filing-scryper/internal/entity"

	"gorm.io/gorm"
)

// TrackedEntityRepository lists the companies whose filings are ingested.
type TrackedEntityRepository interface {
	GetTrackedEntities(ctx context.Context) ([]entity.TrackedEntity, error)
}

type trackedEntityRepository struct {
	db *gorm.DB
}

// NewTrackedEntityRepository reads tracked entities from the database.
func NewTrackedEntityRepository(db *gorm.DB) TrackedEntityRepository {
	return &trackedEntityRepository{db: db}
}

func (r *trackedEntityRepository) GetTrackedEntities(ctx context.Context) ([]entity.TrackedEntity, error) {
	var entities []entity.TrackedEntity
	if err := r.db.WithContext(ctx).Order("id asc").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

type staticTrackedEntityRepository struct {
	entities []entity.TrackedEntity
}

// NewStaticTrackedEntityRepository serves a fixed list, in the given order.
func NewStaticTrackedEntityRepository(entities []entity.TrackedEntity) TrackedEntityRepository {
	return &staticTrackedEntityRepository{entities: entities}
}

func (r *staticTrackedEntityRepository) GetTrackedEntities(context.Context) ([]entity.TrackedEntity, error) {
	out := make([]entity.TrackedEntity, len(r.entities))
	copy(out, r.entities)
	return out, nil
}
