// harvester/sources/psql/models/run.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Run struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	StartedAt    time.Time `json:"started_at" gorm:"not null"`
	FinishedAt   time.Time `json:"finished_at"`
	Total        int       `json:"total"`
	Status       string    `json:"status" gorm:"type:varchar(64)"`
	SheetWritten bool      `json:"sheet_written"`
	Appended     int       `json:"appended"`
	CSVPath      string    `json:"csv_path"`
	JSONPath     string    `json:"json_path"`
	Tools        []Tool    `json:"tools,omitempty" gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Run) TableName() string {
	return "runs"
}

func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
