package services_test

import (
	"testing"
	"time"

	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type loadOption func(*load.RestoreParams)

func withStatus(s load.Status) loadOption {
	return func(p *load.RestoreParams) { p.Status = s }
}

func withMode(m load.PostingMode, invited ...kernel.UUID) loadOption {
	return func(p *load.RestoreParams) {
		p.PostingMode = m
		p.InvitedCarrierIDs = invited
	}
}

func withAssigned(id kernel.UUID) loadOption {
	return func(p *load.RestoreParams) { p.AssignedCarrierID = &id }
}

func withShipper(id kernel.UUID) loadOption {
	return func(p *load.RestoreParams) { p.ShipperID = id }
}

func withCreatedAt(at time.Time) loadOption {
	return func(p *load.RestoreParams) { p.CreatedAt = at }
}

func newLoad(t *testing.T, opts ...loadOption) *load.Load {
	t.Helper()
	admin := kernel.MustMoney(1300)
	final := kernel.MustMoney(1150)
	p := load.RestoreParams{
		ID:               kernel.NewUUID(),
		ShipperID:        kernel.NewUUID(),
		Lane:             load.Lane{OriginZone: "north", DestinationZone: "south", TruckType: "reefer"},
		Status:           load.OpenForBid,
		AdminFinalPrice:  &admin,
		FinalPrice:       &final,
		PostingMode:      load.PostingOpen,
		AllowCounterBids: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, opt := range opts {
		opt(&p)
	}
	l, err := load.RestoreLoad(p)
	require.NoError(t, err)
	return l
}

func newProfile(t *testing.T, id kernel.UUID, reliability int, verified bool) *carrier.Profile {
	t.Helper()
	p, err := carrier.NewProfile(id, carrier.Scores{Reliability: reliability, Communication: 80, OnTime: 80},
		[]string{"North"}, []string{"Reefer"}, 4, verified)
	require.NoError(t, err)
	return p
}
