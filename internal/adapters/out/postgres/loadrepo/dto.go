// Package loadrepo persists the load aggregate and its status history.
package loadrepo

import (
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// LoadDTO is the row shape of the loads table. Invited carriers are stored as
// a text[] of uuids.
type LoadDTO struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ShipperID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	OriginZone        string              `gorm:"type:varchar(64);not null"`
	DestinationZone   string              `gorm:"type:varchar(64);not null"`
	TruckType         string              `gorm:"type:varchar(64);not null;default:''"`
	Status            string              `gorm:"type:varchar(32);not null;index"`
	PreviousStatus    *string             `gorm:"type:varchar(32)"`
	StatusChangedBy   *uuid.UUID          `gorm:"type:uuid"`
	StatusChangedAt   time.Time           `gorm:"not null"`
	SuggestedPrice    decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	AdminFinalPrice   decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	FinalPrice        decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	PostingMode       string              `gorm:"type:varchar(16);not null"`
	InvitedCarrierIDs pq.StringArray      `gorm:"type:text[]"`
	AllowCounterBids  bool                `gorm:"not null"`
	KYCVerified       bool                `gorm:"column:kyc_verified;not null"`
	AssignedCarrierID *uuid.UUID          `gorm:"type:uuid;index"`
	AssignedTruckID   *uuid.UUID          `gorm:"type:uuid"`
	AwardedBidID      *uuid.UUID          `gorm:"type:uuid"`
	PickupID          *string             `gorm:"type:varchar(16);uniqueIndex"`
	CreatedAt         time.Time           `gorm:"not null;autoCreateTime:false;index"`
	UpdatedAt         time.Time           `gorm:"not null;autoUpdateTime:false"`
}

func (LoadDTO) TableName() string {
	return "loads"
}

// HistoryDTO is one row of load_history. Rows are only ever inserted.
type HistoryDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	LoadID     uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus string    `gorm:"type:varchar(32);not null"`
	ToStatus   string    `gorm:"type:varchar(32);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	Note       string    `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime:false"`
}

func (HistoryDTO) TableName() string {
	return "load_history"
}

func fromDomain(l *load.Load) LoadDTO {
	lane := l.Lane()

	var previous *string
	if l.PreviousStatus() != nil {
		s := string(*l.PreviousStatus())
		previous = &s
	}

	invited := make(pq.StringArray, 0, len(l.InvitedCarrierIDs()))
	for _, id := range l.InvitedCarrierIDs() {
		invited = append(invited, id.String())
	}

	var pickupID *string
	if l.PickupID() != "" {
		code := l.PickupID()
		pickupID = &code
	}

	return LoadDTO{
		ID:                l.ID().Bytes(),
		ShipperID:         l.ShipperID().Bytes(),
		OriginZone:        lane.OriginZone,
		DestinationZone:   lane.DestinationZone,
		TruckType:         lane.TruckType,
		Status:            string(l.Status()),
		PreviousStatus:    previous,
		StatusChangedBy:   kernel.RawUUID(l.StatusChangedBy()),
		StatusChangedAt:   l.StatusChangedAt(),
		SuggestedPrice:    kernel.NullDecimal(l.SuggestedPrice()),
		AdminFinalPrice:   kernel.NullDecimal(l.AdminFinalPrice()),
		FinalPrice:        kernel.NullDecimal(l.FinalPrice()),
		PostingMode:       string(l.PostingMode()),
		InvitedCarrierIDs: invited,
		AllowCounterBids:  l.AllowCounterBids(),
		KYCVerified:       l.KYCVerified(),
		AssignedCarrierID: kernel.RawUUID(l.AssignedCarrierID()),
		AssignedTruckID:   kernel.RawUUID(l.AssignedTruckID()),
		AwardedBidID:      kernel.RawUUID(l.AwardedBidID()),
		PickupID:          pickupID,
		CreatedAt:         l.CreatedAt(),
		UpdatedAt:         l.UpdatedAt(),
	}
}

func toDomain(dto LoadDTO) (*load.Load, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	shipperID, err := kernel.UUIDFromBytes(dto.ShipperID[:])
	if err != nil {
		return nil, err
	}

	var previous *load.Status
	if dto.PreviousStatus != nil {
		s := load.Status(*dto.PreviousStatus)
		previous = &s
	}

	invited := make([]kernel.UUID, 0, len(dto.InvitedCarrierIDs))
	for _, raw := range dto.InvitedCarrierIDs {
		carrierID, parseErr := kernel.ParseUUID(raw)
		if parseErr != nil {
			return nil, parseErr
		}
		invited = append(invited, carrierID)
	}

	p := load.RestoreParams{
		ID:                id,
		ShipperID:         shipperID,
		Lane:              load.Lane{OriginZone: dto.OriginZone, DestinationZone: dto.DestinationZone, TruckType: dto.TruckType},
		Status:            load.Status(dto.Status),
		PreviousStatus:    previous,
		StatusChangedAt:   dto.StatusChangedAt,
		PostingMode:       load.PostingMode(dto.PostingMode),
		InvitedCarrierIDs: invited,
		AllowCounterBids:  dto.AllowCounterBids,
		KYCVerified:       dto.KYCVerified,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
	}
	if dto.PickupID != nil {
		p.PickupID = *dto.PickupID
	}

	if p.StatusChangedBy, err = kernel.OptionalUUID(dto.StatusChangedBy); err != nil {
		return nil, err
	}
	if p.AssignedCarrierID, err = kernel.OptionalUUID(dto.AssignedCarrierID); err != nil {
		return nil, err
	}
	if p.AssignedTruckID, err = kernel.OptionalUUID(dto.AssignedTruckID); err != nil {
		return nil, err
	}
	if p.AwardedBidID, err = kernel.OptionalUUID(dto.AwardedBidID); err != nil {
		return nil, err
	}
	if p.SuggestedPrice, err = kernel.OptionalMoney(dto.SuggestedPrice); err != nil {
		return nil, err
	}
	if p.AdminFinalPrice, err = kernel.OptionalMoney(dto.AdminFinalPrice); err != nil {
		return nil, err
	}
	if p.FinalPrice, err = kernel.OptionalMoney(dto.FinalPrice); err != nil {
		return nil, err
	}

	return load.RestoreLoad(p)
}

func historyFromDomain(r load.HistoryRecord) HistoryDTO {
	return HistoryDTO{
		ID:         r.ID().Bytes(),
		LoadID:     r.LoadID().Bytes(),
		FromStatus: string(r.From()),
		ToStatus:   string(r.To()),
		ActorID:    r.ActorID().Bytes(),
		Note:       r.Note(),
		CreatedAt:  r.At(),
	}
}

func historyToDomain(dto HistoryDTO) (load.HistoryRecord, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return load.HistoryRecord{}, err
	}
	loadID, err := kernel.UUIDFromBytes(dto.LoadID[:])
	if err != nil {
		return load.HistoryRecord{}, err
	}
	actorID, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return load.HistoryRecord{}, err
	}
	return load.RestoreHistoryRecord(id, loadID, load.Status(dto.FromStatus), load.Status(dto.ToStatus), actorID, dto.Note, dto.CreatedAt)
}
