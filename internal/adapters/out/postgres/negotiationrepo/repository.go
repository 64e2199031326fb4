// Package negotiationrepo stores the append-only negotiation log.
package negotiationrepo

import (
	"context"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MessageDTO struct {
	ID         uuid.UUID           `gorm:"type:uuid;primaryKey"`
	BidID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	LoadID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	SenderID   uuid.UUID           `gorm:"type:uuid;not null"`
	SenderRole string              `gorm:"type:varchar(16);not null"`
	Type       string              `gorm:"type:varchar(16);not null"`
	Content    string              `gorm:"type:text;not null;default:''"`
	Amount     decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	CreatedAt  time.Time           `gorm:"not null;autoCreateTime:false"`
}

func (MessageDTO) TableName() string {
	return "negotiation_messages"
}

// GormNegotiationRepository implements ports.NegotiationRepository. It has no
// update or delete path.
type GormNegotiationRepository struct {
	db *gorm.DB
}

func NewGormNegotiationRepository(db *gorm.DB) *GormNegotiationRepository {
	return &GormNegotiationRepository{db: db}
}

func (r *GormNegotiationRepository) Append(ctx context.Context, message *negotiation.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto := MessageDTO{
		ID:         message.ID().Bytes(),
		BidID:      message.BidID().Bytes(),
		LoadID:     message.LoadID().Bytes(),
		SenderID:   message.SenderID().Bytes(),
		SenderRole: string(message.SenderRole()),
		Type:       string(message.Type()),
		Content:    message.Content(),
		Amount:     kernel.NullDecimal(message.Amount()),
		CreatedAt:  message.CreatedAt(),
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListByBid returns the log oldest first.
func (r *GormNegotiationRepository) ListByBid(ctx context.Context, bidID kernel.UUID) ([]*negotiation.Message, error) {
	var dtos []MessageDTO
	if err := r.db.WithContext(ctx).
		Where("bid_id = ?", bidID.Bytes()).
		Order("created_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	messages := make([]*negotiation.Message, 0, len(dtos))
	for _, dto := range dtos {
		m, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func toDomain(dto MessageDTO) (*negotiation.Message, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	bidID, err := kernel.UUIDFromBytes(dto.BidID[:])
	if err != nil {
		return nil, err
	}
	loadID, err := kernel.UUIDFromBytes(dto.LoadID[:])
	if err != nil {
		return nil, err
	}
	senderID, err := kernel.UUIDFromBytes(dto.SenderID[:])
	if err != nil {
		return nil, err
	}
	amount, err := kernel.OptionalMoney(dto.Amount)
	if err != nil {
		return nil, err
	}

	return negotiation.RestoreMessage(
		id, bidID, loadID, senderID,
		user.Role(dto.SenderRole),
		negotiation.MessageType(dto.Type),
		dto.Content,
		amount,
		dto.CreatedAt,
	)
}
