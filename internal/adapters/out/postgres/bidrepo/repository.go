package bidrepo

import (
	"context"
	"errors"
	"time"

	"freight/internal/adapters/out/postgres/pgerr"
	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBidRepository implements ports.BidRepository using GORM.
type GormBidRepository struct {
	db *gorm.DB
}

func NewGormBidRepository(db *gorm.DB) *GormBidRepository {
	return &GormBidRepository{db: db}
}

func (r *GormBidRepository) Add(ctx context.Context, aggregate *bid.Bid) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewConflictError("bid", "carrier already holds an active bid on this load")
		}
		return err
	}
	return nil
}

// Update returns an *errs.ConflictError when the write would leave a second
// accepted bid on the load.
func (r *GormBidRepository) Update(ctx context.Context, aggregate *bid.Bid) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&BidDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		if pgerr.IsUniqueViolation(result.Error) {
			return errs.NewConflictError("bid", "load already has an accepted bid")
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("bid", aggregate.ID().String())
	}
	return nil
}

func (r *GormBidRepository) Get(ctx context.Context, id kernel.UUID) (*bid.Bid, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormBidRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*bid.Bid, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBidRepository) get(db *gorm.DB, id kernel.UUID) (*bid.Bid, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BidDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("bid", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormBidRepository) ListByLoad(ctx context.Context, loadID kernel.UUID) ([]*bid.Bid, error) {
	var dtos []BidDTO
	if err := r.db.WithContext(ctx).
		Where("load_id = ?", loadID.Bytes()).
		Order("created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormBidRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*bid.Bid, error) {
	var dtos []BidDTO
	if err := r.db.WithContext(ctx).
		Where("status IN ?", activeStatuses()).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Order("expires_at").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormBidRepository) HasActiveBid(ctx context.Context, loadID, carrierID kernel.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&BidDTO{}).
		Where("load_id = ? AND carrier_id = ?", loadID.Bytes(), carrierID.Bytes()).
		Where("status IN ?", activeStatuses()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func activeStatuses() []string {
	var out []string
	for _, s := range bid.AllStatuses() {
		if s.IsActive() {
			out = append(out, string(s))
		}
	}
	return out
}

func toDomainList(dtos []BidDTO) ([]*bid.Bid, error) {
	bids := make([]*bid.Bid, 0, len(dtos))
	for _, dto := range dtos {
		b, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, nil
}
