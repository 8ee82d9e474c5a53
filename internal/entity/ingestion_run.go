package entity

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// IngestionRun is the history row written for every ingestion run.
type IngestionRun struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	Trigger      string         `gorm:"not null" json:"trigger"`
	Status       string         `gorm:"not null" json:"status"`
	Tickers      pq.StringArray `gorm:"type:text[]" json:"tickers"`
	WindowStart  time.Time      `gorm:"type:date" json:"window_start"`
	WindowEnd    time.Time      `gorm:"type:date" json:"window_end"`
	NewRecords   int            `json:"new_records"`
	Failures     datatypes.JSON `json:"failures"`
	ErrorMessage sql.NullString `json:"error_message"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the IngestionRun model.
func (IngestionRun) TableName() string {
	return "ingestion_runs"
}
