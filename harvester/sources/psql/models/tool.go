// harvester/sources/psql/models/tool.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tool is one archived record of a run.
type Tool struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RunID       uuid.UUID `json:"run_id" gorm:"type:uuid;index;not null"`
	Position    int       `json:"position"`
	Name        string    `json:"nombre" gorm:"type:varchar(255);not null"`
	Description string    `json:"descripcion" gorm:"type:text"`
	URL         string    `json:"url" gorm:"type:text"`
	Category    string    `json:"categoria" gorm:"type:varchar(128)"`
	Source      string    `json:"fuente" gorm:"type:varchar(128);index"`
	Date        string    `json:"fecha" gorm:"type:varchar(10)"`
}

func (Tool) TableName() string {
	return "tools"
}

func (t *Tool) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
