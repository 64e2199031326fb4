// Package shipmentrepo persists shipments, one per load.
package shipmentrepo

import (
	"context"
	"errors"
	"time"

	"freight/internal/adapters/out/postgres/pgerr"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/shipment"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShipmentDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LoadID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	CarrierID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	TruckID        *uuid.UUID `gorm:"type:uuid"`
	PickupCode     string     `gorm:"type:varchar(16);not null"`
	IdempotencyKey string     `gorm:"type:varchar(128);not null;uniqueIndex"`
	Status         string     `gorm:"type:varchar(24);not null"`
	CreatedAt      time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt      time.Time  `gorm:"not null;autoUpdateTime:false"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

type GormShipmentRepository struct {
	db *gorm.DB
}

func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func (r *GormShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	// The savepoint keeps an enclosing transaction usable after a unique
	// violation.
	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&dto).Error
	})
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewConflictError("shipment", "load "+aggregate.LoadID().String()+" already has a shipment")
		}
		return err
	}
	return nil
}

func (r *GormShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&ShipmentDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("shipment", aggregate.ID().String())
	}
	return nil
}

func (r *GormShipmentRepository) GetByLoad(ctx context.Context, loadID kernel.UUID) (*shipment.Shipment, error) {
	if err := loadID.Validate(); err != nil {
		return nil, err
	}

	var dto ShipmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "load_id = ?", loadID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shipment for load", loadID.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

func fromDomain(s *shipment.Shipment) ShipmentDTO {
	return ShipmentDTO{
		ID:             s.ID().Bytes(),
		LoadID:         s.LoadID().Bytes(),
		CarrierID:      s.CarrierID().Bytes(),
		TruckID:        kernel.RawUUID(s.TruckID()),
		PickupCode:     s.PickupCode(),
		IdempotencyKey: s.IdempotencyKey(),
		Status:         string(s.Status()),
		CreatedAt:      s.CreatedAt(),
		UpdatedAt:      s.UpdatedAt(),
	}
}

func toDomain(dto ShipmentDTO) (*shipment.Shipment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	loadID, err := kernel.UUIDFromBytes(dto.LoadID[:])
	if err != nil {
		return nil, err
	}
	carrierID, err := kernel.UUIDFromBytes(dto.CarrierID[:])
	if err != nil {
		return nil, err
	}
	truckID, err := kernel.OptionalUUID(dto.TruckID)
	if err != nil {
		return nil, err
	}

	return shipment.RestoreShipment(
		id, loadID, carrierID, truckID,
		dto.PickupCode, dto.IdempotencyKey,
		shipment.Status(dto.Status),
		dto.CreatedAt, dto.UpdatedAt,
	)
}
