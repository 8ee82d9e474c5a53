package entity

import (
	"time"

	"gorm.io/gorm"
)

// TrackedEntity is a listed company whose filings are ingested.
type TrackedEntity struct {
	ID        uint           `gorm:"primaryKey" json:"-" mapstructure:"-"`
	Name      string         `gorm:"not null" json:"name" mapstructure:"name" validate:"required"`
	Code      string         `gorm:"not null" json:"code" mapstructure:"code" validate:"required"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"-" mapstructure:"-"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"-" mapstructure:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-" mapstructure:"-"`
}

// TableName specifies the table name for the TrackedEntity model.
func (TrackedEntity) TableName() string {
	return "tracked_entities"
}
