package commands_test

import (
	"testing"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"

	"github.com/stretchr/testify/require"
)

// fixture wires the in-memory store and a recording publisher for handler
// tests that exercise whole workflows.
type fixture struct {
	t         *testing.T
	store     *memoryStore
	publisher *recordingPublisher
	admin     user.Actor
	shipper   user.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:         t,
		store:     newMemoryStore(),
		publisher: &recordingPublisher{},
		admin:     user.Actor{ID: kernel.NewUUID(), Role: user.RoleAdmin},
		shipper:   user.Actor{ID: kernel.NewUUID(), Role: user.RoleShipper},
	}
}

func carrierActor(id kernel.UUID) user.Actor {
	return user.Actor{ID: id, Role: user.RoleCarrier}
}

type loadOption func(*load.RestoreParams)

func withStatus(s load.Status) loadOption {
	return func(p *load.RestoreParams) { p.Status = s }
}

func withoutCounterBids() loadOption {
	return func(p *load.RestoreParams) { p.AllowCounterBids = false }
}

func withInvited(ids ...kernel.UUID) loadOption {
	return func(p *load.RestoreParams) {
		p.PostingMode = load.PostingInvite
		p.InvitedCarrierIDs = ids
	}
}

// withAward puts the load in execution with the given bid as the winner.
func withAward(status load.Status, b *bid.Bid, pickupID string) loadOption {
	return func(p *load.RestoreParams) {
		carrierID, bidID := b.CarrierID(), b.ID()
		price := b.Amount()
		p.Status = status
		p.AssignedCarrierID = &carrierID
		p.AwardedBidID = &bidID
		p.FinalPrice = &price
		p.PickupID = pickupID
	}
}

// seedLoad stores an open_for_bid load owned by the fixture's shipper, priced
// at 1300 for the shipper with a 1250 suggestion.
func (f *fixture) seedLoad(opts ...loadOption) *load.Load {
	f.t.Helper()
	admin := kernel.MustMoney(1300)
	suggested := kernel.MustMoney(1250)
	created := time.Now().UTC().Add(-time.Hour)
	p := load.RestoreParams{
		ID:               kernel.NewUUID(),
		ShipperID:        f.shipper.ID,
		Lane:             load.Lane{OriginZone: "north", DestinationZone: "south", TruckType: "reefer"},
		Status:           load.OpenForBid,
		SuggestedPrice:   &suggested,
		AdminFinalPrice:  &admin,
		PostingMode:      load.PostingOpen,
		AllowCounterBids: true,
		StatusChangedAt:  created,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	for _, opt := range opts {
		opt(&p)
	}
	l, err := load.RestoreLoad(p)
	require.NoError(f.t, err)
	f.store.seedLoad(l)
	return l
}

type bidOption func(*bid.RestoreParams)

func withBidStatus(s bid.Status) bidOption {
	return func(p *bid.RestoreParams) { p.Status = s }
}

func withCounter(amount float64) bidOption {
	return func(p *bid.RestoreParams) {
		counter := kernel.MustMoney(amount)
		p.Status = bid.Countered
		p.CounterAmount = &counter
	}
}

func withCarrier(id kernel.UUID) bidOption {
	return func(p *bid.RestoreParams) { p.CarrierID = id }
}

func withExpiry(at time.Time) bidOption {
	return func(p *bid.RestoreParams) { p.ExpiresAt = &at }
}

// seedBid stores a pending bid on l from a fresh carrier.
func (f *fixture) seedBid(l *load.Load, amount float64, opts ...bidOption) *bid.Bid {
	f.t.Helper()
	created := time.Now().UTC().Add(-30 * time.Minute)
	p := bid.RestoreParams{
		ID:        kernel.NewUUID(),
		LoadID:    l.ID(),
		CarrierID: kernel.NewUUID(),
		Amount:    kernel.MustMoney(amount),
		Status:    bid.Pending,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&p)
	}
	b, err := bid.RestoreBid(p)
	require.NoError(f.t, err)
	f.store.seedBid(b)
	return b
}

// seedCarrier stores a verified carrier serving the fixture lane. With
// compliant set, every required document is on file and valid for a year.
func (f *fixture) seedCarrier(compliant bool) kernel.UUID {
	f.t.Helper()
	id := kernel.NewUUID()
	profile, err := carrier.NewProfile(id, carrier.Scores{Reliability: 90, Communication: 85, OnTime: 88},
		[]string{"north"}, []string{"reefer"}, 3, true)
	require.NoError(f.t, err)

	var docs []*carrier.Document
	if compliant {
		docs = f.documents(id, time.Now().UTC().AddDate(1, 0, 0), carrier.RequiredDocumentTypes()...)
	}
	f.store.seedCarrier(profile, docs...)
	return id
}

func (f *fixture) documents(carrierID kernel.UUID, expiresAt time.Time, types ...carrier.DocumentType) []*carrier.Document {
	f.t.Helper()
	docs := make([]*carrier.Document, 0, len(types))
	for _, dt := range types {
		at := expiresAt
		d, err := carrier.NewDocument(kernel.NewUUID(), carrierID, dt, true, &at)
		require.NoError(f.t, err)
		docs = append(docs, d)
	}
	return docs
}

func money(v float64) *kernel.Money {
	m := kernel.MustMoney(v)
	return &m
}
