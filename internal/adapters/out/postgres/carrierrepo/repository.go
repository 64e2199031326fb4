// Package carrierrepo reads carrier profiles and compliance documents. Both
// tables are owned by onboarding; this package never writes them.
package carrierrepo

import (
	"context"
	"errors"
	"time"

	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProfileDTO struct {
	CarrierID     uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Reliability   int            `gorm:"type:smallint;not null"`
	Communication int            `gorm:"type:smallint;not null"`
	OnTime        int            `gorm:"type:smallint;not null"`
	ServiceZones  pq.StringArray `gorm:"type:text[]"`
	TruckTypes    pq.StringArray `gorm:"type:text[]"`
	FleetSize     int            `gorm:"type:int;not null"`
	Verified      bool           `gorm:"not null"`
}

func (ProfileDTO) TableName() string {
	return "carrier_profiles"
}

type DocumentDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CarrierID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type      string     `gorm:"type:varchar(32);not null"`
	Verified  bool       `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"`
}

func (DocumentDTO) TableName() string {
	return "carrier_documents"
}

// GormCarrierRepository implements ports.CarrierRepository.
type GormCarrierRepository struct {
	db *gorm.DB
}

func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

func (r *GormCarrierRepository) GetProfile(ctx context.Context, carrierID kernel.UUID) (*carrier.Profile, error) {
	if err := carrierID.Validate(); err != nil {
		return nil, err
	}

	var dto ProfileDTO
	if err := r.db.WithContext(ctx).First(&dto, "carrier_id = ?", carrierID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("carrier profile", carrierID.String())
		}
		return nil, err
	}

	return carrier.NewProfile(
		carrierID,
		carrier.Scores{Reliability: dto.Reliability, Communication: dto.Communication, OnTime: dto.OnTime},
		dto.ServiceZones,
		dto.TruckTypes,
		dto.FleetSize,
		dto.Verified,
	)
}

// ListDocuments returns every document on file, verified or not. A carrier
// with none gets an empty slice.
func (r *GormCarrierRepository) ListDocuments(ctx context.Context, carrierID kernel.UUID) ([]*carrier.Document, error) {
	var dtos []DocumentDTO
	if err := r.db.WithContext(ctx).
		Where("carrier_id = ?", carrierID.Bytes()).
		Order("type, expires_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	docs := make([]*carrier.Document, 0, len(dtos))
	for _, dto := range dtos {
		id, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		doc, err := carrier.NewDocument(id, carrierID, carrier.DocumentType(dto.Type), dto.Verified, dto.ExpiresAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
