// Package bidrepo persists bids.
package bidrepo

import (
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidDTO is the row shape of the bids table. The partial unique index keeps a
// load from ever holding two accepted bids, whatever the application does.
type BidDTO struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	LoadID          uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_bids_one_accepted_per_load,where:status = 'accepted'"`
	CarrierID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	TruckID         *uuid.UUID          `gorm:"type:uuid"`
	Amount          decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	CounterAmount   decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	AcceptedAmount  decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Status          string              `gorm:"type:varchar(16);not null;index"`
	Notes           string              `gorm:"type:text;not null;default:''"`
	RejectionReason string              `gorm:"type:text;not null;default:''"`
	DecidedBy       *uuid.UUID          `gorm:"type:uuid"`
	DecidedAt       *time.Time
	ExpiresAt       *time.Time `gorm:"index"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt       time.Time  `gorm:"not null;autoUpdateTime:false"`
}

func (BidDTO) TableName() string {
	return "bids"
}

func fromDomain(b *bid.Bid) BidDTO {
	return BidDTO{
		ID:              b.ID().Bytes(),
		LoadID:          b.LoadID().Bytes(),
		CarrierID:       b.CarrierID().Bytes(),
		TruckID:         kernel.RawUUID(b.TruckID()),
		Amount:          b.Amount().Amount(),
		CounterAmount:   kernel.NullDecimal(b.CounterAmount()),
		AcceptedAmount:  kernel.NullDecimal(b.AcceptedAmount()),
		Status:          string(b.Status()),
		Notes:           b.Notes(),
		RejectionReason: b.RejectionReason(),
		DecidedBy:       kernel.RawUUID(b.DecidedBy()),
		DecidedAt:       b.DecidedAt(),
		ExpiresAt:       b.ExpiresAt(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

func toDomain(dto BidDTO) (*bid.Bid, error) {
	p := bid.RestoreParams{
		Status:          bid.Status(dto.Status),
		Notes:           dto.Notes,
		RejectionReason: dto.RejectionReason,
		DecidedAt:       dto.DecidedAt,
		ExpiresAt:       dto.ExpiresAt,
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
	if p.CarrierID, err = kernel.UUIDFromBytes(dto.CarrierID[:]); err != nil {
		return nil, err
	}
	if p.TruckID, err = kernel.OptionalUUID(dto.TruckID); err != nil {
		return nil, err
	}
	if p.DecidedBy, err = kernel.OptionalUUID(dto.DecidedBy); err != nil {
		return nil, err
	}
	if p.Amount, err = kernel.NewMoney(dto.Amount); err != nil {
		return nil, err
	}
	if p.CounterAmount, err = kernel.OptionalMoney(dto.CounterAmount); err != nil {
		return nil, err
	}
	if p.AcceptedAmount, err = kernel.OptionalMoney(dto.AcceptedAmount); err != nil {
		return nil, err
	}

	return bid.RestoreBid(p)
}
