package loadrepo

import (
	"context"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"

	"gorm.io/gorm"
)

// GormHistoryRepository implements ports.HistoryRepository. Loads flush their
// own pending records through GormLoadRepository; Append writes records as
// given.
type GormHistoryRepository struct {
	db *gorm.DB
}

func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

func (r *GormHistoryRepository) Append(ctx context.Context, records ...load.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	dtos := make([]HistoryDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, historyFromDomain(record))
	}
	return r.db.WithContext(ctx).Create(&dtos).Error
}

// ListByLoad returns the records oldest first.
func (r *GormHistoryRepository) ListByLoad(ctx context.Context, loadID kernel.UUID) ([]load.HistoryRecord, error) {
	var dtos []HistoryDTO
	if err := r.db.WithContext(ctx).
		Where("load_id = ?", loadID.Bytes()).
		Order("created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]load.HistoryRecord, 0, len(dtos))
	for _, dto := range dtos {
		record, err := historyToDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
