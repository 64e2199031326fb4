package queries_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

var (
	now             = time.Date(2026, 4, 14, 8, 30, 0, 0, time.UTC)
	errNotSupported = errors.New("not supported by the read fake")
)

// readStore is an in-memory read model. The queries never write, so the
// write side of each repository is left unsupported.
type readStore struct {
	loads     []*load.Load
	bids      map[kernel.UUID]*bid.Bid
	messages  map[kernel.UUID][]*negotiation.Message
	profiles  map[kernel.UUID]*carrier.Profile
	documents map[kernel.UUID][]*carrier.Document
	creates   int
}

func newReadStore() *readStore {
	return &readStore{
		bids:      make(map[kernel.UUID]*bid.Bid),
		messages:  make(map[kernel.UUID][]*negotiation.Message),
		profiles:  make(map[kernel.UUID]*carrier.Profile),
		documents: make(map[kernel.UUID][]*carrier.Document),
	}
}

func (s *readStore) Create() queries.ReadUoW {
	s.creates++
	return readUoW{s}
}

type readUoW struct{ s *readStore }

func (u readUoW) LoadRepository() ports.LoadRepository {
	return readLoads{u.s}
}

func (u readUoW) BidRepository() ports.BidRepository {
	return readBids{u.s}
}

func (u readUoW) NegotiationRepository() ports.NegotiationRepository {
	return readNegotiation{u.s}
}

func (u readUoW) CarrierRepository() ports.CarrierRepository {
	return readCarriers{u.s}
}

type readLoads struct{ s *readStore }

func (r readLoads) Add(context.Context, *load.Load) error    { return errNotSupported }
func (r readLoads) Update(context.Context, *load.Load) error { return errNotSupported }

func (r readLoads) Get(_ context.Context, id kernel.UUID) (*load.Load, error) {
	for _, l := range r.s.loads {
		if l.ID().IsEqual(id) {
			return l, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("load", id)
}

func (r readLoads) GetForUpdate(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	return r.Get(ctx, id)
}

func (r readLoads) List(context.Context) ([]*load.Load, error) {
	return slices.Clone(r.s.loads), nil
}

func (r readLoads) ListByShipper(_ context.Context, shipperID kernel.UUID) ([]*load.Load, error) {
	var out []*load.Load
	for _, l := range r.s.loads {
		if l.ShipperID().IsEqual(shipperID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r readLoads) ListAwardedMissingArtifacts(context.Context, int) ([]*load.Load, error) {
	return nil, errNotSupported
}

func (r readLoads) PickupCodeExists(context.Context, string) (bool, error) {
	return false, errNotSupported
}

type readBids struct{ s *readStore }

func (r readBids) Add(context.Context, *bid.Bid) error    { return errNotSupported }
func (r readBids) Update(context.Context, *bid.Bid) error { return errNotSupported }

func (r readBids) Get(_ context.Context, id kernel.UUID) (*bid.Bid, error) {
	b, ok := r.s.bids[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("bid", id)
	}
	return b, nil
}

func (r readBids) GetForUpdate(ctx context.Context, id kernel.UUID) (*bid.Bid, error) {
	return r.Get(ctx, id)
}

func (r readBids) ListByLoad(context.Context, kernel.UUID) ([]*bid.Bid, error) {
	return nil, errNotSupported
}

func (r readBids) ListExpired(context.Context, time.Time, int) ([]*bid.Bid, error) {
	return nil, errNotSupported
}

func (r readBids) HasActiveBid(context.Context, kernel.UUID, kernel.UUID) (bool, error) {
	return false, errNotSupported
}

type readNegotiation struct{ s *readStore }

func (r readNegotiation) Append(context.Context, *negotiation.Message) error {
	return errNotSupported
}

func (r readNegotiation) ListByBid(_ context.Context, bidID kernel.UUID) ([]*negotiation.Message, error) {
	return slices.Clone(r.s.messages[bidID]), nil
}

type readCarriers struct{ s *readStore }

func (r readCarriers) GetProfile(_ context.Context, carrierID kernel.UUID) (*carrier.Profile, error) {
	p, ok := r.s.profiles[carrierID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("carrier profile", carrierID)
	}
	return p, nil
}

func (r readCarriers) ListDocuments(_ context.Context, carrierID kernel.UUID) ([]*carrier.Document, error) {
	return slices.Clone(r.s.documents[carrierID]), nil
}

type loadOption func(*load.RestoreParams)

func withStatus(s load.Status) loadOption {
	return func(p *load.RestoreParams) { p.Status = s }
}

func withShipper(id kernel.UUID) loadOption {
	return func(p *load.RestoreParams) { p.ShipperID = id }
}

func withAssigned(id kernel.UUID) loadOption {
	return func(p *load.RestoreParams) { p.AssignedCarrierID = &id }
}

func withInvited(ids ...kernel.UUID) loadOption {
	return func(p *load.RestoreParams) {
		p.PostingMode = load.PostingInvite
		p.InvitedCarrierIDs = ids
	}
}

func withCreatedAt(at time.Time) loadOption {
	return func(p *load.RestoreParams) { p.CreatedAt = at }
}

func (s *readStore) addLoad(t *testing.T, opts ...loadOption) *load.Load {
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
	s.loads = append(s.loads, l)
	return l
}

func (s *readStore) addCarrier(t *testing.T) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	p, err := carrier.NewProfile(id, carrier.Scores{Reliability: 90, Communication: 80, OnTime: 85},
		[]string{"north"}, []string{"reefer"}, 3, true)
	require.NoError(t, err)
	s.profiles[id] = p
	return id
}

func (s *readStore) addBid(t *testing.T, l *load.Load, carrierID kernel.UUID, amount float64) *bid.Bid {
	t.Helper()
	b, err := bid.RestoreBid(bid.RestoreParams{
		ID:        kernel.NewUUID(),
		LoadID:    l.ID(),
		CarrierID: carrierID,
		Amount:    kernel.MustMoney(amount),
		Status:    bid.Pending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	s.bids[b.ID()] = b
	return b
}

func (s *readStore) addMessage(t *testing.T, b *bid.Bid, m *negotiation.Message, err error) {
	t.Helper()
	require.NoError(t, err)
	s.messages[b.ID()] = append(s.messages[b.ID()], m)
}
