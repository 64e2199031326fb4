// Package commands contains the write side of the brokerage engine. Every
// handler validates its command, opens a unit of work, applies domain rules,
// commits, and only then publishes events.
package commands

import (
	"context"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/ports"
)

// Unit of Work role interfaces. Handlers depend on the narrowest one they need,
// which keeps test doubles small.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	LoadRepoFactory interface {
		LoadRepository() ports.LoadRepository
	}

	BidRepoFactory interface {
		BidRepository() ports.BidRepository
	}

	NegotiationRepoFactory interface {
		NegotiationRepository() ports.NegotiationRepository
	}

	CarrierRepoFactory interface {
		CarrierRepository() ports.CarrierRepository
	}

	InvoiceRepoFactory interface {
		InvoiceRepository() ports.InvoiceRepository
	}

	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	// LoadUoW covers commands that only touch the load aggregate.
	LoadUoW interface {
		TxManager
		LoadRepoFactory
	}

	LoadUoWFactory interface {
		Create() LoadUoW
	}

	// UoW spans every aggregate of the engine. Used by the negotiation and
	// award workflows, which change loads, bids and artifacts together.
	//
	// Example:
	//
	//	uow := factory.Create()
	//	if err := uow.Begin(ctx); err != nil {
	//	    return err
	//	}
	//	defer func() { _ = uow.Rollback(ctx) }()
	//
	//	l, err := uow.LoadRepository().GetForUpdate(ctx, loadID)
	//	// ... mutate
	//	return uow.Commit(ctx)
	UoW interface {
		TxManager
		LoadRepoFactory
		BidRepoFactory
		NegotiationRepoFactory
		CarrierRepoFactory
		InvoiceRepoFactory
		ShipmentRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)

// lockBidAndLoad locks a bid's load and then the bid itself. Every workflow
// that writes a bid together with its load takes the locks in this order.
func lockBidAndLoad(ctx context.Context, bids ports.BidRepository, loads ports.LoadRepository, bidID kernel.UUID) (*bid.Bid, *load.Load, error) {
	peek, err := bids.Get(ctx, bidID)
	if err != nil {
		return nil, nil, err
	}
	l, err := loads.GetForUpdate(ctx, peek.LoadID())
	if err != nil {
		return nil, nil, err
	}
	b, err := bids.GetForUpdate(ctx, bidID)
	if err != nil {
		return nil, nil, err
	}
	return b, l, nil
}
