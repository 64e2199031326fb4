package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command so concurrent
// requests never share a transaction.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories obtained after
// Begin run inside the transaction; repositories obtained without Begin run
// directly against the database.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	LoadRepository() LoadRepository
	HistoryRepository() HistoryRepository
	BidRepository() BidRepository
	NegotiationRepository() NegotiationRepository
	CarrierRepository() CarrierRepository
	UserRepository() UserRepository
	InvoiceRepository() InvoiceRepository
	ShipmentRepository() ShipmentRepository
}
