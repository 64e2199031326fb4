// Package queries contains the read side of the brokerage engine. Queries never
// open a transaction and never publish; they return read models shaped for the
// caller's role.
package queries

import (
	"freight/internal/core/ports"
)

type (
	// ReadUoW hands out repositories bound to the database without a
	// transaction.
	ReadUoW interface {
		LoadRepository() ports.LoadRepository
		BidRepository() ports.BidRepository
		NegotiationRepository() ports.NegotiationRepository
		CarrierRepository() ports.CarrierRepository
	}

	ReadUoWFactory interface {
		Create() ReadUoW
	}
)
