// harvester/sources/psql/dao/dao.run.go
package dao

import (
	"context"

	"harvester/harvester/sources/psql/models"
	"harvester/harvester/utils/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunDAO struct {
	DB *gorm.DB
}

func NewRunDAO(db *gorm.DB) *RunDAO {
	return &RunDAO{DB: db}
}

// SaveRun stores the summary and its records in one transaction.
func (dao *RunDAO) SaveRun(ctx context.Context, summary types.Summary, records []types.ToolRecord) (*models.Run, error) {
	id, err := uuid.Parse(summary.RunID)
	if err != nil {
		id = uuid.New()
	}
	run := &models.Run{
		ID:           id,
		StartedAt:    summary.StartedAt,
		FinishedAt:   summary.FinishedAt,
		Total:        len(records),
		Status:       summary.Status,
		SheetWritten: summary.Sink.Written,
		Appended:     summary.Sink.Appended,
		CSVPath:      summary.Backup.CSVPath,
		JSONPath:     summary.Backup.JSONPath,
	}
	for i, r := range records {
		run.Tools = append(run.Tools, models.Tool{
			RunID:       id,
			Position:    i,
			Name:        r.Name,
			Description: r.Description,
			URL:         r.URL,
			Category:    r.Category,
			Source:      r.Source,
			Date:        r.Date,
		})
	}

	err = dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (dao *RunDAO) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.Run
	err := dao.DB.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (dao *RunDAO) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	var run models.Run
	err := dao.DB.WithContext(ctx).
		Preload("Tools", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&run, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
