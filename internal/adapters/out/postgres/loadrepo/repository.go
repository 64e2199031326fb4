package loadrepo

import (
	"context"
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLoadRepository implements ports.LoadRepository using GORM. Pending
// history records of an aggregate are written with the same db handle, so
// inside a unit of work they share its transaction.
type GormLoadRepository struct {
	db *gorm.DB
}

func NewGormLoadRepository(db *gorm.DB) *GormLoadRepository {
	return &GormLoadRepository{db: db}
}

// Add saves a new load and its pending history.
func (r *GormLoadRepository) Add(ctx context.Context, aggregate *load.Load) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	return r.flushHistory(ctx, aggregate)
}

// Update overwrites every column of an existing load, including the ones the
// aggregate cleared, then appends its pending history.
func (r *GormLoadRepository) Update(ctx context.Context, aggregate *load.Load) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&LoadDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("load", aggregate.ID().String())
	}

	return r.flushHistory(ctx, aggregate)
}

func (r *GormLoadRepository) Get(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

// GetForUpdate takes a row lock (SELECT ... FOR UPDATE) that concurrent
// accepts on the same load queue behind.
func (r *GormLoadRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormLoadRepository) get(_ context.Context, db *gorm.DB, id kernel.UUID) (*load.Load, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto LoadDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("load", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormLoadRepository) List(ctx context.Context) ([]*load.Load, error) {
	var dtos []LoadDTO
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormLoadRepository) ListByShipper(ctx context.Context, shipperID kernel.UUID) ([]*load.Load, error) {
	var dtos []LoadDTO
	if err := r.db.WithContext(ctx).
		Where("shipper_id = ?", shipperID.Bytes()).
		Order("created_at DESC").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// ListAwardedMissingArtifacts finds awarded-or-later loads without an invoice
// or without a shipment. Whether a missing shipment is actually due is left
// to the caller's shipment policy.
func (r *GormLoadRepository) ListAwardedMissingArtifacts(ctx context.Context, limit int) ([]*load.Load, error) {
	var dtos []LoadDTO
	if err := r.db.WithContext(ctx).
		Table("loads").
		Select("loads.*").
		Joins("LEFT JOIN invoices ON invoices.load_id = loads.id").
		Joins("LEFT JOIN shipments ON shipments.load_id = loads.id").
		Where("loads.status IN ?", executionStatuses()).
		Where("loads.awarded_bid_id IS NOT NULL").
		Where("invoices.id IS NULL OR shipments.id IS NULL").
		Order("loads.updated_at").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormLoadRepository) PickupCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&LoadDTO{}).Where("pickup_id = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormLoadRepository) flushHistory(ctx context.Context, aggregate *load.Load) error {
	pending := aggregate.PendingHistory()
	if len(pending) == 0 {
		return nil
	}

	dtos := make([]HistoryDTO, 0, len(pending))
	for _, record := range pending {
		dtos = append(dtos, historyFromDomain(record))
	}
	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return err
	}

	aggregate.ClearPendingHistory()
	return nil
}

func executionStatuses() []string {
	var out []string
	for _, s := range load.AllStatuses() {
		if s.IsExecutionPhase() {
			out = append(out, string(s))
		}
	}
	return out
}

func toDomainList(dtos []LoadDTO) ([]*load.Load, error) {
	loads := make([]*load.Load, 0, len(dtos))
	for _, dto := range dtos {
		l, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}
	return loads, nil
}
