package ports

import (
	"context"

	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
)

// CarrierRepository is a read-only view of carrier profiles and documents.
// Onboarding writes them elsewhere.
type CarrierRepository interface {
	GetProfile(ctx context.Context, carrierID kernel.UUID) (*carrier.Profile, error)
	ListDocuments(ctx context.Context, carrierID kernel.UUID) ([]*carrier.Document, error)
}

type UserRepository interface {
	Get(ctx context.Context, id kernel.UUID) (*user.User, error)
}
