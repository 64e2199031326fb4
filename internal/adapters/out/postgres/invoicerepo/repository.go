// Package invoicerepo persists invoices, one per load.
package invoicerepo

import (
	"context"
	"errors"
	"time"

	"freight/internal/adapters/out/postgres/pgerr"
	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceDTO carries three unique keys: the load, the invoice number and the
// idempotency key. Any of them colliding means the invoice already exists.
type InvoiceDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LoadID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ShipperID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CarrierID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number          string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	IdempotencyKey  string          `gorm:"type:varchar(128);not null;uniqueIndex"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CarrierAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status          string          `gorm:"type:varchar(16);not null"`
	RejectionReason string          `gorm:"type:text;not null;default:''"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime:false"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime:false"`
}

func (InvoiceDTO) TableName() string {
	return "invoices"
}

type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Add maps a unique violation to *errs.ConflictError so the caller can fall
// back to reading the invoice that won the race.
func (r *GormInvoiceRepository) Add(ctx context.Context, aggregate *invoice.Invoice) error {
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
			return errs.NewConflictError("invoice", "load "+aggregate.LoadID().String()+" already has an invoice")
		}
		return err
	}
	return nil
}

func (r *GormInvoiceRepository) Update(ctx context.Context, aggregate *invoice.Invoice) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&InvoiceDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("invoice", aggregate.ID().String())
	}
	return nil
}

func (r *GormInvoiceRepository) GetByLoad(ctx context.Context, loadID kernel.UUID) (*invoice.Invoice, error) {
	if err := loadID.Validate(); err != nil {
		return nil, err
	}

	var dto InvoiceDTO
	if err := r.db.WithContext(ctx).First(&dto, "load_id = ?", loadID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("invoice for load", loadID.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormInvoiceRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&InvoiceDTO{}).Where("number = ?", number).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func fromDomain(i *invoice.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:              i.ID().Bytes(),
		LoadID:          i.LoadID().Bytes(),
		ShipperID:       i.ShipperID().Bytes(),
		CarrierID:       i.CarrierID().Bytes(),
		Number:          i.Number(),
		IdempotencyKey:  i.IdempotencyKey(),
		Total:           i.Total().Amount(),
		CarrierAmount:   i.CarrierAmount().Amount(),
		Status:          string(i.Status()),
		RejectionReason: i.RejectionReason(),
		CreatedAt:       i.CreatedAt(),
		UpdatedAt:       i.UpdatedAt(),
	}
}

func toDomain(dto InvoiceDTO) (*invoice.Invoice, error) {
	p := invoice.RestoreParams{
		Number:          dto.Number,
		IdempotencyKey:  dto.IdempotencyKey,
		Status:          invoice.Status(dto.Status),
		RejectionReason: dto.RejectionReason,
		CreatedAt:       dto.CreatedAt,
		UpdatedAt:       dto.UpdatedAt,
	}

	var err error
	if p.ID, err = kernel.UUIDFromBytes(dto.ID[:]); err != nil {
		return nil, err
	}
	if p.LoadID, err = kernel.UUIDFromBytes(dto.LoadID[:]); err != nil {
		return nil, err
	}
	if p.ShipperID, err = kernel.UUIDFromBytes(dto.ShipperID[:]); err != nil {
		return nil, err
	}
	if p.CarrierID, err = kernel.UUIDFromBytes(dto.CarrierID[:]); err != nil {
		return nil, err
	}
	if p.Total, err = kernel.NewMoney(dto.Total); err != nil {
		return nil, err
	}
	if p.CarrierAmount, err = kernel.NewMoney(dto.CarrierAmount); err != nil {
		return nil, err
	}

	return invoice.RestoreInvoice(p)
}
