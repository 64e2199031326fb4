package commands_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/shipment"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"
)

// memoryState is a snapshot of every table the commands touch. Aggregates are
// stored as private copies so a handler only changes state through Update.
type memoryState struct {
	loads     map[kernel.UUID]*load.Load
	history   []load.HistoryRecord
	bids      map[kernel.UUID]*bid.Bid
	bidOrder  []kernel.UUID
	messages  []*negotiation.Message
	profiles  map[kernel.UUID]*carrier.Profile
	documents map[kernel.UUID][]*carrier.Document
	invoices  map[kernel.UUID]*invoice.Invoice
	shipments map[kernel.UUID]*shipment.Shipment

	invoiceAdds  int
	shipmentAdds int
}

func newMemoryState() *memoryState {
	return &memoryState{
		loads:     map[kernel.UUID]*load.Load{},
		bids:      map[kernel.UUID]*bid.Bid{},
		profiles:  map[kernel.UUID]*carrier.Profile{},
		documents: map[kernel.UUID][]*carrier.Document{},
		invoices:  map[kernel.UUID]*invoice.Invoice{},
		shipments: map[kernel.UUID]*shipment.Shipment{},
	}
}

func (s *memoryState) clone() (*memoryState, error) {
	c := newMemoryState()
	for id, l := range s.loads {
		cl, err := cloneLoad(l)
		if err != nil {
			return nil, err
		}
		c.loads[id] = cl
	}
	for id, b := range s.bids {
		cb, err := cloneBid(b)
		if err != nil {
			return nil, err
		}
		c.bids[id] = cb
	}
	for id, inv := range s.invoices {
		ci, err := cloneInvoice(inv)
		if err != nil {
			return nil, err
		}
		c.invoices[id] = ci
	}
	for id, sh := range s.shipments {
		cs, err := cloneShipment(sh)
		if err != nil {
			return nil, err
		}
		c.shipments[id] = cs
	}
	c.history = slices.Clone(s.history)
	c.bidOrder = slices.Clone(s.bidOrder)
	c.messages = slices.Clone(s.messages)
	for id, p := range s.profiles {
		c.profiles[id] = p
	}
	for id, d := range s.documents {
		c.documents[id] = d
	}
	c.invoiceAdds, c.shipmentAdds = s.invoiceAdds, s.shipmentAdds
	return c, nil
}

// memoryStore is the committed state shared by every unit of work.
type memoryStore struct {
	mu    sync.Mutex
	state *memoryState

	failShipmentAdd error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{state: newMemoryState()}
}

func (s *memoryStore) seedLoad(l *load.Load) {
	c, err := cloneLoad(l)
	if err != nil {
		panic(err)
	}
	s.state.loads[l.ID()] = c
}

func (s *memoryStore) seedBid(b *bid.Bid) {
	c, err := cloneBid(b)
	if err != nil {
		panic(err)
	}
	s.state.bids[b.ID()] = c
	s.state.bidOrder = append(s.state.bidOrder, b.ID())
}

func (s *memoryStore) seedCarrier(p *carrier.Profile, docs ...*carrier.Document) {
	s.state.profiles[p.CarrierID()] = p
	s.state.documents[p.CarrierID()] = docs
}

func (s *memoryStore) loadByID(id kernel.UUID) *load.Load {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.loads[id]
}

func (s *memoryStore) bidByID(id kernel.UUID) *bid.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.bids[id]
}

func (s *memoryStore) invoiceOf(loadID kernel.UUID) *invoice.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.invoices[loadID]
}

func (s *memoryStore) shipmentOf(loadID kernel.UUID) *shipment.Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.shipments[loadID]
}

func (s *memoryStore) messagesOf(bidID kernel.UUID) []*negotiation.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*negotiation.Message
	for _, m := range s.state.messages {
		if m.BidID().IsEqual(bidID) {
			out = append(out, m)
		}
	}
	return out
}

func (s *memoryStore) historyOf(loadID kernel.UUID) []load.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []load.HistoryRecord
	for _, h := range s.state.history {
		if h.LoadID().IsEqual(loadID) {
			out = append(out, h)
		}
	}
	return out
}

func (s *memoryStore) Create() commands.UoW {
	return &memoryUoW{store: s}
}

// memoryLoadFactory serves the handlers that only need the load repository.
type memoryLoadFactory struct{ store *memoryStore }

func (f memoryLoadFactory) Create() commands.LoadUoW {
	return &memoryUoW{store: f.store}
}

// memoryUoW works on a private copy of the state between Begin and Commit.
// Without Begin every call goes straight to the committed state.
type memoryUoW struct {
	store *memoryStore
	tx    *memoryState
}

func (u *memoryUoW) Begin(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	tx, err := u.store.state.clone()
	if err != nil {
		return err
	}
	u.tx = tx
	return nil
}

func (u *memoryUoW) Commit(context.Context) error {
	if u.tx == nil {
		return errors.New("commit without begin")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.state = u.tx
	u.tx = nil
	return nil
}

func (u *memoryUoW) Rollback(context.Context) error {
	u.tx = nil
	return nil
}

// with runs fn against the transaction copy or the committed state.
func (u *memoryUoW) with(fn func(s *memoryState) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(u.store.state)
}

func (u *memoryUoW) LoadRepository() ports.LoadRepository               { return memoryLoads{u} }
func (u *memoryUoW) BidRepository() ports.BidRepository                 { return memoryBids{u} }
func (u *memoryUoW) NegotiationRepository() ports.NegotiationRepository { return memoryNegotiation{u} }
func (u *memoryUoW) CarrierRepository() ports.CarrierRepository         { return memoryCarriers{u} }
func (u *memoryUoW) InvoiceRepository() ports.InvoiceRepository         { return memoryInvoices{u} }
func (u *memoryUoW) ShipmentRepository() ports.ShipmentRepository       { return memoryShipments{u} }

type memoryLoads struct{ uow *memoryUoW }

func (r memoryLoads) Add(ctx context.Context, l *load.Load) error {
	return r.uow.with(func(s *memoryState) error {
		return r.put(s, l)
	})
}

func (r memoryLoads) Update(ctx context.Context, l *load.Load) error {
	return r.uow.with(func(s *memoryState) error {
		if _, ok := s.loads[l.ID()]; !ok {
			return errs.NewObjectNotFoundError("load", l.ID())
		}
		return r.put(s, l)
	})
}

func (r memoryLoads) put(s *memoryState, l *load.Load) error {
	c, err := cloneLoad(l)
	if err != nil {
		return err
	}
	s.loads[l.ID()] = c
	s.history = append(s.history, l.PendingHistory()...)
	l.ClearPendingHistory()
	return nil
}

func (r memoryLoads) Get(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	var out *load.Load
	err := r.uow.with(func(s *memoryState) error {
		l, ok := s.loads[id]
		if !ok {
			return errs.NewObjectNotFoundError("load", id)
		}
		c, err := cloneLoad(l)
		out = c
		return err
	})
	return out, err
}

func (r memoryLoads) GetForUpdate(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	return r.Get(ctx, id)
}

func (r memoryLoads) List(ctx context.Context) ([]*load.Load, error) {
	return r.filter(func(*load.Load) bool { return true })
}

func (r memoryLoads) ListByShipper(ctx context.Context, shipperID kernel.UUID) ([]*load.Load, error) {
	return r.filter(func(l *load.Load) bool { return l.ShipperID().IsEqual(shipperID) })
}

func (r memoryLoads) ListAwardedMissingArtifacts(ctx context.Context, limit int) ([]*load.Load, error) {
	var out []*load.Load
	err := r.uow.with(func(s *memoryState) error {
		for _, l := range s.loads {
			if !l.Status().IsExecutionPhase() || l.AwardedBidID() == nil {
				continue
			}
			_, hasInvoice := s.invoices[l.ID()]
			_, hasShipment := s.shipments[l.ID()]
			if hasInvoice && hasShipment {
				continue
			}
			c, err := cloneLoad(l)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r memoryLoads) PickupCodeExists(ctx context.Context, code string) (bool, error) {
	found := false
	err := r.uow.with(func(s *memoryState) error {
		for _, l := range s.loads {
			if l.PickupID() == code {
				found = true
			}
		}
		return nil
	})
	return found, err
}

func (r memoryLoads) filter(keep func(*load.Load) bool) ([]*load.Load, error) {
	var out []*load.Load
	err := r.uow.with(func(s *memoryState) error {
		for _, l := range s.loads {
			if !keep(l) {
				continue
			}
			c, err := cloneLoad(l)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *load.Load) int { return b.CreatedAt().Compare(a.CreatedAt()) })
	return out, err
}

type memoryBids struct{ uow *memoryUoW }

func (r memoryBids) Add(ctx context.Context, b *bid.Bid) error {
	return r.uow.with(func(s *memoryState) error {
		c, err := cloneBid(b)
		if err != nil {
			return err
		}
		s.bids[b.ID()] = c
		s.bidOrder = append(s.bidOrder, b.ID())
		return nil
	})
}

// Update mirrors the partial unique index on accepted bids.
func (r memoryBids) Update(ctx context.Context, b *bid.Bid) error {
	return r.uow.with(func(s *memoryState) error {
		if _, ok := s.bids[b.ID()]; !ok {
			return errs.NewObjectNotFoundError("bid", b.ID())
		}
		if b.Status() == bid.Accepted {
			for _, other := range s.bids {
				if other.LoadID().IsEqual(b.LoadID()) && !other.ID().IsEqual(b.ID()) && other.Status() == bid.Accepted {
					return errs.NewConflictError("bid", "load already has an accepted bid")
				}
			}
		}
		c, err := cloneBid(b)
		if err != nil {
			return err
		}
		s.bids[b.ID()] = c
		return nil
	})
}

func (r memoryBids) Get(ctx context.Context, id kernel.UUID) (*bid.Bid, error) {
	var out *bid.Bid
	err := r.uow.with(func(s *memoryState) error {
		b, ok := s.bids[id]
		if !ok {
			return errs.NewObjectNotFoundError("bid", id)
		}
		c, err := cloneBid(b)
		out = c
		return err
	})
	return out, err
}

func (r memoryBids) GetForUpdate(ctx context.Context, id kernel.UUID) (*bid.Bid, error) {
	return r.Get(ctx, id)
}

func (r memoryBids) ListByLoad(ctx context.Context, loadID kernel.UUID) ([]*bid.Bid, error) {
	return r.filter(func(b *bid.Bid) bool { return b.LoadID().IsEqual(loadID) }, 0)
}

func (r memoryBids) ListExpired(ctx context.Context, now time.Time, limit int) ([]*bid.Bid, error) {
	return r.filter(func(b *bid.Bid) bool { return b.IsExpiredAt(now) }, limit)
}

func (r memoryBids) HasActiveBid(ctx context.Context, loadID, carrierID kernel.UUID) (bool, error) {
	found, err := r.filter(func(b *bid.Bid) bool {
		return b.LoadID().IsEqual(loadID) && b.IsOwnedBy(carrierID) && b.Status().IsActive()
	}, 1)
	return len(found) > 0, err
}

func (r memoryBids) filter(keep func(*bid.Bid) bool, limit int) ([]*bid.Bid, error) {
	var out []*bid.Bid
	err := r.uow.with(func(s *memoryState) error {
		for _, id := range s.bidOrder {
			b := s.bids[id]
			if !keep(b) {
				continue
			}
			c, err := cloneBid(b)
			if err != nil {
				return err
			}
			out = append(out, c)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

type memoryNegotiation struct{ uow *memoryUoW }

func (r memoryNegotiation) Append(ctx context.Context, m *negotiation.Message) error {
	return r.uow.with(func(s *memoryState) error {
		s.messages = append(s.messages, m)
		return nil
	})
}

func (r memoryNegotiation) ListByBid(ctx context.Context, bidID kernel.UUID) ([]*negotiation.Message, error) {
	var out []*negotiation.Message
	err := r.uow.with(func(s *memoryState) error {
		for _, m := range s.messages {
			if m.BidID().IsEqual(bidID) {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}

type memoryCarriers struct{ uow *memoryUoW }

func (r memoryCarriers) GetProfile(ctx context.Context, carrierID kernel.UUID) (*carrier.Profile, error) {
	var out *carrier.Profile
	err := r.uow.with(func(s *memoryState) error {
		p, ok := s.profiles[carrierID]
		if !ok {
			return errs.NewObjectNotFoundError("carrier", carrierID)
		}
		out = p
		return nil
	})
	return out, err
}

func (r memoryCarriers) ListDocuments(ctx context.Context, carrierID kernel.UUID) ([]*carrier.Document, error) {
	var out []*carrier.Document
	err := r.uow.with(func(s *memoryState) error {
		out = slices.Clone(s.documents[carrierID])
		return nil
	})
	return out, err
}

type memoryInvoices struct{ uow *memoryUoW }

func (r memoryInvoices) Add(ctx context.Context, inv *invoice.Invoice) error {
	return r.uow.with(func(s *memoryState) error {
		if _, ok := s.invoices[inv.LoadID()]; ok {
			return errs.NewConflictError("invoice", "load already has an invoice")
		}
		c, err := cloneInvoice(inv)
		if err != nil {
			return err
		}
		s.invoices[inv.LoadID()] = c
		s.invoiceAdds++
		return nil
	})
}

func (r memoryInvoices) Update(ctx context.Context, inv *invoice.Invoice) error {
	return r.uow.with(func(s *memoryState) error {
		if _, ok := s.invoices[inv.LoadID()]; !ok {
			return errs.NewObjectNotFoundError("invoice", inv.ID())
		}
		c, err := cloneInvoice(inv)
		if err != nil {
			return err
		}
		s.invoices[inv.LoadID()] = c
		return nil
	})
}

func (r memoryInvoices) GetByLoad(ctx context.Context, loadID kernel.UUID) (*invoice.Invoice, error) {
	var out *invoice.Invoice
	err := r.uow.with(func(s *memoryState) error {
		inv, ok := s.invoices[loadID]
		if !ok {
			return errs.NewObjectNotFoundError("invoice", loadID)
		}
		c, err := cloneInvoice(inv)
		out = c
		return err
	})
	return out, err
}

func (r memoryInvoices) NumberExists(ctx context.Context, number string) (bool, error) {
	found := false
	err := r.uow.with(func(s *memoryState) error {
		for _, inv := range s.invoices {
			if inv.Number() == number {
				found = true
			}
		}
		return nil
	})
	return found, err
}

type memoryShipments struct{ uow *memoryUoW }

func (r memoryShipments) Add(ctx context.Context, sh *shipment.Shipment) error {
	if err := r.uow.store.failShipmentAdd; err != nil {
		return err
	}
	return r.uow.with(func(s *memoryState) error {
		if _, ok := s.shipments[sh.LoadID()]; ok {
			return errs.NewConflictError("shipment", "load already has a shipment")
		}
		c, err := cloneShipment(sh)
		if err != nil {
			return err
		}
		s.shipments[sh.LoadID()] = c
		s.shipmentAdds++
		return nil
	})
}

func (r memoryShipments) Update(ctx context.Context, sh *shipment.Shipment) error {
	return r.uow.with(func(s *memoryState) error {
		if _, ok := s.shipments[sh.LoadID()]; !ok {
			return errs.NewObjectNotFoundError("shipment", sh.ID())
		}
		c, err := cloneShipment(sh)
		if err != nil {
			return err
		}
		s.shipments[sh.LoadID()] = c
		return nil
	})
}

func (r memoryShipments) GetByLoad(ctx context.Context, loadID kernel.UUID) (*shipment.Shipment, error) {
	var out *shipment.Shipment
	err := r.uow.with(func(s *memoryState) error {
		sh, ok := s.shipments[loadID]
		if !ok {
			return errs.NewObjectNotFoundError("shipment", loadID)
		}
		c, err := cloneShipment(sh)
		out = c
		return err
	})
	return out, err
}

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) ofType(t ports.EventType) []ports.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []ports.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func cloneLoad(l *load.Load) (*load.Load, error) {
	return load.RestoreLoad(load.RestoreParams{
		ID:                l.ID(),
		ShipperID:         l.ShipperID(),
		Lane:              l.Lane(),
		Status:            l.Status(),
		PreviousStatus:    l.PreviousStatus(),
		StatusChangedBy:   l.StatusChangedBy(),
		StatusChangedAt:   l.StatusChangedAt(),
		SuggestedPrice:    l.SuggestedPrice(),
		AdminFinalPrice:   l.AdminFinalPrice(),
		FinalPrice:        l.FinalPrice(),
		PostingMode:       l.PostingMode(),
		InvitedCarrierIDs: l.InvitedCarrierIDs(),
		AllowCounterBids:  l.AllowCounterBids(),
		KYCVerified:       l.KYCVerified(),
		AssignedCarrierID: l.AssignedCarrierID(),
		AssignedTruckID:   l.AssignedTruckID(),
		AwardedBidID:      l.AwardedBidID(),
		PickupID:          l.PickupID(),
		CreatedAt:         l.CreatedAt(),
		UpdatedAt:         l.UpdatedAt(),
	})
}

func cloneBid(b *bid.Bid) (*bid.Bid, error) {
	return bid.RestoreBid(bid.RestoreParams{
		ID:              b.ID(),
		LoadID:          b.LoadID(),
		CarrierID:       b.CarrierID(),
		TruckID:         b.TruckID(),
		Amount:          b.Amount(),
		CounterAmount:   b.CounterAmount(),
		AcceptedAmount:  b.AcceptedAmount(),
		Status:          b.Status(),
		Notes:           b.Notes(),
		RejectionReason: b.RejectionReason(),
		DecidedBy:       b.DecidedBy(),
		DecidedAt:       b.DecidedAt(),
		ExpiresAt:       b.ExpiresAt(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	})
}

func cloneInvoice(inv *invoice.Invoice) (*invoice.Invoice, error) {
	return invoice.RestoreInvoice(invoice.RestoreParams{
		ID:              inv.ID(),
		LoadID:          inv.LoadID(),
		ShipperID:       inv.ShipperID(),
		CarrierID:       inv.CarrierID(),
		Number:          inv.Number(),
		IdempotencyKey:  inv.IdempotencyKey(),
		Total:           inv.Total(),
		CarrierAmount:   inv.CarrierAmount(),
		Status:          inv.Status(),
		RejectionReason: inv.RejectionReason(),
		CreatedAt:       inv.CreatedAt(),
		UpdatedAt:       inv.UpdatedAt(),
	})
}

func cloneShipment(sh *shipment.Shipment) (*shipment.Shipment, error) {
	return shipment.RestoreShipment(sh.ID(), sh.LoadID(), sh.CarrierID(), sh.TruckID(),
		sh.PickupCode(), sh.IdempotencyKey(), sh.Status(), sh.CreatedAt(), sh.UpdatedAt())
}
