package ports

import (
	"context"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
)

// BidRepository persists bids.
type BidRepository interface {
	Add(ctx context.Context, aggregate *bid.Bid) error
	Update(ctx context.Context, aggregate *bid.Bid) error
	Get(ctx context.Context, id kernel.UUID) (*bid.Bid, error)

	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*bid.Bid, error)

	// ListByLoad returns every bid on a load in placement order.
	ListByLoad(ctx context.Context, loadID kernel.UUID) ([]*bid.Bid, error)

	// ListExpired returns active bids whose expiry is before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*bid.Bid, error)

	// HasActiveBid reports whether the carrier holds a pending or countered bid on the load.
	HasActiveBid(ctx context.Context, loadID, carrierID kernel.UUID) (bool, error)
}
