package ports

import (
	"context"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/negotiation"
)

// NegotiationRepository is append-only. Messages are never updated or deleted.
type NegotiationRepository interface {
	Append(ctx context.Context, message *negotiation.Message) error

	// ListByBid returns the log in append order.
	ListByBid(ctx context.Context, bidID kernel.UUID) ([]*negotiation.Message, error)
}
