package commands_test

import (
	"testing"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/shipment"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) transitionHandler(policy commands.ShipmentPolicy) commands.TransitionLoadCommandHandler {
	return commands.NewTransitionLoadCommandHandler(f.store, services.NewCodeGenerator(), policy, f.publisher, nil)
}

func (f *fixture) transitionWith(h commands.TransitionLoadCommandHandler, l *load.Load, target load.Status, actor user.Actor) (*load.Load, error) {
	f.t.Helper()
	cmd, err := commands.NewTransitionLoadCommand(l.ID(), target, actor, "")
	require.NoError(f.t, err)
	return h.Handle(f.t.Context(), cmd)
}

func (f *fixture) transition(l *load.Load, target load.Status, actor user.Actor) (*load.Load, error) {
	f.t.Helper()
	return f.transitionWith(f.transitionHandler(commands.ShipmentEager), l, target, actor)
}

func TestTransitionLoadCommandHandler_EveryNonEdgeIsDenied(t *testing.T) {
	for _, from := range load.AllStatuses() {
		for _, to := range load.AllStatuses() {
			if from.CanTransitionTo(to) {
				continue
			}
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				f := newFixture(t)
				l := f.seedLoad(withStatus(from))

				_, err := f.transition(l, to, f.admin)

				require.ErrorIs(t, err, errs.ErrTransitionDenied)
				stored := f.store.loadByID(l.ID())
				assert.Equal(t, from, stored.Status())
				assert.Empty(t, f.store.historyOf(l.ID()))
				assert.Zero(t, f.publisher.count())
			})
		}
	}
}

func TestTransitionLoadCommandHandler_ShipperSubmitsDraft(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad(withStatus(load.Draft))

	cmd, err := commands.NewSubmitLoadCommand(l.ID(), f.shipper)
	require.NoError(t, err)
	got, err := f.transitionHandler(commands.ShipmentEager).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Equal(t, load.Pending, got.Status())
	history := f.store.historyOf(l.ID())
	require.Len(t, history, 1)
	assert.Equal(t, f.shipper.ID, history[0].ActorID())
	assert.Len(t, f.publisher.ofType(ports.EventLoadUpdated), 2)
}

func TestTransitionLoadCommandHandler_RoleRules(t *testing.T) {
	tests := []struct {
		name    string
		from    load.Status
		to      load.Status
		actor   func(f *fixture, assigned kernel.UUID) user.Actor
		wantErr error
	}{
		{
			name:    "shipper may not price",
			from:    load.Pending,
			to:      load.Priced,
			actor:   func(f *fixture, _ kernel.UUID) user.Actor { return f.shipper },
			wantErr: errs.ErrForbidden,
		},
		{
			name:  "shipper closes a delivered load",
			from:  load.Delivered,
			to:    load.Closed,
			actor: func(f *fixture, _ kernel.UUID) user.Actor { return f.shipper },
		},
		{
			name:    "another shipper may not touch the load",
			from:    load.Draft,
			to:      load.Pending,
			actor:   func(*fixture, kernel.UUID) user.Actor { return user.Actor{ID: kernel.NewUUID(), Role: user.RoleShipper} },
			wantErr: errs.ErrForbidden,
		},
		{
			name:  "assigned carrier starts transit",
			from:  load.InvoicePaid,
			to:    load.InTransit,
			actor: func(_ *fixture, assigned kernel.UUID) user.Actor { return carrierActor(assigned) },
		},
		{
			name:    "unassigned carrier may not deliver",
			from:    load.InTransit,
			to:      load.Delivered,
			actor:   func(*fixture, kernel.UUID) user.Actor { return carrierActor(kernel.NewUUID()) },
			wantErr: errs.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := f.seedBid(f.seedLoad(), 1000, withBidStatus(bid.Accepted))
			l := f.seedLoad(withStatus(tt.from), func(p *load.RestoreParams) {
				id := b.CarrierID()
				p.AssignedCarrierID = &id
			})

			_, err := f.transition(l, tt.to, tt.actor(f, b.CarrierID()))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, f.store.loadByID(l.ID()).Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, f.store.loadByID(l.ID()).Status())
		})
	}
}

func TestTransitionLoadCommandHandler_AwardOnlyThroughAcceptBid(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad()
	winner := f.seedBid(l, 1000)
	sibling := f.seedBid(l, 1100)

	_, err := f.transition(l, load.Awarded, f.admin)

	require.ErrorIs(t, err, errs.ErrTransitionDenied)
	stored := f.store.loadByID(l.ID())
	assert.Equal(t, load.OpenForBid, stored.Status())
	assert.Nil(t, stored.AwardedBidID())
	assert.Empty(t, f.store.historyOf(l.ID()))
	assert.Zero(t, f.publisher.count())

	res, err := f.accept(f.acceptHandler(commands.DefaultAwardOptions()), winner.ID(), nil)
	require.NoError(t, err)
	assert.Equal(t, load.Awarded, res.Load.Status())
	require.NotNil(t, res.Load.AssignedCarrierID())
	assert.Equal(t, winner.CarrierID(), *res.Load.AssignedCarrierID())
	assert.NotEmpty(t, res.Load.PickupID())
	assert.Equal(t, bid.Rejected, f.store.bidByID(sibling.ID()).Status())
}

func TestTransitionLoadCommandHandler_AwardedLoadWithoutBid_CannotBeInvoiced(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad(withStatus(load.Awarded))

	_, err := f.transition(l, load.InvoiceCreated, f.admin)

	require.ErrorIs(t, err, errs.ErrTransitionDenied)
	assert.Equal(t, load.Awarded, f.store.loadByID(l.ID()).Status())
	assert.Nil(t, f.store.invoiceOf(l.ID()))
}

func TestTransitionLoadCommandHandler_UnavailableLoadReturnsOnlyWhereItLeft(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad(withStatus(load.Draft))

	_, err := f.transition(l, load.Unavailable, f.shipper)
	require.NoError(t, err)

	_, err = f.transition(l, load.PostedToCarriers, f.shipper)
	require.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.transition(l, load.PostedToCarriers, f.admin)
	require.ErrorIs(t, err, errs.ErrTransitionDenied)
	assert.Equal(t, load.Unavailable, f.store.loadByID(l.ID()).Status())

	got, err := f.transition(l, load.Draft, f.shipper)
	require.NoError(t, err)
	assert.Equal(t, load.Draft, got.Status())
	assert.Len(t, f.store.historyOf(l.ID()), 2)
}

func TestTransitionLoadCommandHandler_DeferredShipment_CreatedOnAcknowledgeEdge(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad()
	b := f.seedBid(l, 1000)
	_, err := f.accept(f.acceptHandler(commands.AwardOptions{ShipmentPolicy: commands.ShipmentDeferred}), b.ID(), nil)
	require.NoError(t, err)
	require.Nil(t, f.store.shipmentOf(l.ID()))

	h := f.transitionHandler(commands.ShipmentDeferred)
	for _, step := range []struct {
		target load.Status
		actor  user.Actor
	}{
		{load.InvoiceCreated, f.admin},
		{load.InvoiceSent, f.admin},
	} {
		_, err = f.transitionWith(h, l, step.target, step.actor)
		require.NoError(t, err, step.target.String())
	}
	assert.Nil(t, f.store.shipmentOf(l.ID()))

	_, err = f.transitionWith(h, l, load.InvoiceAcknowledged, f.shipper)
	require.NoError(t, err)
	assert.Equal(t, invoice.Acknowledged, f.store.invoiceOf(l.ID()).Status())
	require.NotNil(t, f.store.shipmentOf(l.ID()))
	assert.Equal(t, shipment.PickupScheduled, f.store.shipmentOf(l.ID()).Status())

	_, err = f.transitionWith(h, l, load.InTransit, carrierActor(b.CarrierID()))
	require.NoError(t, err)
	assert.Equal(t, shipment.InTransit, f.store.shipmentOf(l.ID()).Status())
}

func TestTransitionLoadCommandHandler_ShipmentFollowsExecution(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad()
	b := f.seedBid(l, 1000)
	_, err := f.accept(f.acceptHandler(commands.DefaultAwardOptions()), b.ID(), nil)
	require.NoError(t, err)

	advance := commands.NewAdvanceInvoiceCommandHandler(f.store, services.NewCodeGenerator(), commands.ShipmentEager, f.publisher, nil)
	for _, step := range []struct {
		action commands.InvoiceAction
		actor  user.Actor
	}{
		{commands.InvoiceSend, f.admin},
		{commands.InvoiceAcknowledge, f.shipper},
	} {
		cmd, err := commands.NewAdvanceInvoiceCommand(l.ID(), step.action, step.actor, "", nil)
		require.NoError(t, err)
		_, err = advance.Handle(t.Context(), cmd)
		require.NoError(t, err)
	}

	carrier := carrierActor(b.CarrierID())
	_, err = f.transition(l, load.InTransit, carrier)
	require.NoError(t, err)
	assert.Equal(t, shipment.InTransit, f.store.shipmentOf(l.ID()).Status())

	_, err = f.transition(l, load.Delivered, carrier)
	require.NoError(t, err)
	assert.Equal(t, shipment.Delivered, f.store.shipmentOf(l.ID()).Status())

	_, err = f.transition(l, load.Closed, f.shipper)
	require.NoError(t, err)
	assert.Equal(t, load.Closed, f.store.loadByID(l.ID()).Status())
}

func TestAdvanceInvoiceCommandHandler_DisputeAndRevise(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad()
	b := f.seedBid(l, 1000)
	_, err := f.accept(f.acceptHandler(commands.DefaultAwardOptions()), b.ID(), nil)
	require.NoError(t, err)
	h := commands.NewAdvanceInvoiceCommandHandler(f.store, services.NewCodeGenerator(), commands.ShipmentEager, f.publisher, nil)

	step := func(action commands.InvoiceAction, actor user.Actor, note string, revised *kernel.Money) (commands.AdvanceInvoiceResult, error) {
		cmd, err := commands.NewAdvanceInvoiceCommand(l.ID(), action, actor, note, revised)
		require.NoError(t, err)
		return h.Handle(t.Context(), cmd)
	}

	res, err := step(commands.InvoiceSend, f.admin, "", nil)
	require.NoError(t, err)
	assert.Equal(t, load.InvoiceSent, res.Load.Status())
	assert.Equal(t, invoice.Sent, res.Invoice.Status())

	_, err = step(commands.InvoiceReject, f.shipper, "rate too high", nil)
	require.NoError(t, err)
	assert.Equal(t, load.InvoiceRejected, f.store.loadByID(l.ID()).Status())
	assert.Equal(t, "rate too high", f.store.invoiceOf(l.ID()).RejectionReason())

	_, err = step(commands.InvoiceRevise, f.shipper, "", money(1250))
	require.ErrorIs(t, err, errs.ErrForbidden)

	res, err = step(commands.InvoiceRevise, f.admin, "", money(1250))
	require.NoError(t, err)
	assert.Equal(t, load.InvoiceCreated, res.Load.Status())
	assert.Equal(t, invoice.Draft, res.Invoice.Status())
	assert.True(t, res.Invoice.Total().Equal(kernel.MustMoney(1250)))

	_, err = step(commands.InvoiceSend, f.admin, "", nil)
	require.NoError(t, err)
	_, err = step(commands.InvoiceAcknowledge, f.shipper, "", nil)
	require.NoError(t, err)
	res, err = step(commands.InvoicePay, f.admin, "", nil)
	require.NoError(t, err)
	assert.Equal(t, load.InvoicePaid, res.Load.Status())
	assert.Equal(t, invoice.Paid, res.Invoice.Status())

	updates := f.publisher.ofType(ports.EventInvoiceUpdated)
	assert.NotEmpty(t, updates)
	for _, e := range updates {
		assert.IsType(t, commands.InvoiceChanged{}, e.Payload)
	}
}

func TestAdvanceInvoiceCommandHandler_OutOfOrderActionIsDenied(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad()
	b := f.seedBid(l, 1000)
	_, err := f.accept(f.acceptHandler(commands.DefaultAwardOptions()), b.ID(), nil)
	require.NoError(t, err)
	h := commands.NewAdvanceInvoiceCommandHandler(f.store, services.NewCodeGenerator(), commands.ShipmentEager, f.publisher, nil)

	cmd, err := commands.NewAdvanceInvoiceCommand(l.ID(), commands.InvoicePay, f.admin, "", nil)
	require.NoError(t, err)
	_, err = h.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrTransitionDenied)
	assert.Equal(t, load.Awarded, f.store.loadByID(l.ID()).Status())
	assert.Equal(t, invoice.Draft, f.store.invoiceOf(l.ID()).Status())
}

func TestAdvanceInvoiceCommandHandler_LoadWithoutAward(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad()
	h := commands.NewAdvanceInvoiceCommandHandler(f.store, services.NewCodeGenerator(), commands.ShipmentEager, f.publisher, nil)

	cmd, err := commands.NewAdvanceInvoiceCommand(l.ID(), commands.InvoiceSend, f.admin, "", nil)
	require.NoError(t, err)
	_, err = h.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrTransitionDenied)
	assert.Nil(t, f.store.invoiceOf(l.ID()))
}

func TestPostLoadCommandHandler_InviteMode_NotifiesInvitedCarriers(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad(withStatus(load.Priced))
	invited := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()}

	cmd, err := commands.NewPostLoadCommand(l.ID(), load.PostingOptions{
		Mode:              load.PostingInvite,
		InvitedCarrierIDs: invited,
		AllowCounterBids:  true,
	}, f.admin)
	require.NoError(t, err)
	got, err := commands.NewPostLoadCommandHandler(memoryLoadFactory{f.store}, f.publisher, nil).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Equal(t, load.PostedToCarriers, got.Status())
	posted := f.publisher.ofType(ports.EventLoadPosted)
	require.Len(t, posted, 2)
	for i, e := range posted {
		assert.True(t, e.Scope.Matches(user.RoleCarrier, invited[i]))
	}
}

func TestPostLoadCommandHandler_OpenMode_NotifiesAllCarriers(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad(withStatus(load.Priced))

	cmd, err := commands.NewPostLoadCommand(l.ID(), load.PostingOptions{Mode: load.PostingOpen}, f.admin)
	require.NoError(t, err)
	_, err = commands.NewPostLoadCommandHandler(memoryLoadFactory{f.store}, f.publisher, nil).Handle(t.Context(), cmd)

	require.NoError(t, err)
	posted := f.publisher.ofType(ports.EventLoadPosted)
	require.Len(t, posted, 1)
	assert.Equal(t, ports.RoleScope(user.RoleCarrier), posted[0].Scope)
	assert.False(t, f.store.loadByID(l.ID()).AllowCounterBids())
}

func TestSetLoadAvailabilityCommandHandler_RoundTrip(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad(withStatus(load.PostedToCarriers))
	h := commands.NewSetLoadAvailabilityCommandHandler(memoryLoadFactory{f.store}, f.publisher, nil)

	off, err := commands.NewSetLoadAvailabilityCommand(l.ID(), false, f.shipper)
	require.NoError(t, err)
	got, err := h.Handle(t.Context(), off)
	require.NoError(t, err)
	assert.Equal(t, load.Unavailable, got.Status())

	on, err := commands.NewSetLoadAvailabilityCommand(l.ID(), true, f.shipper)
	require.NoError(t, err)
	got, err = h.Handle(t.Context(), on)
	require.NoError(t, err)
	assert.Equal(t, load.PostedToCarriers, got.Status())
	assert.Len(t, f.store.historyOf(l.ID()), 2)
}

func TestSetLoadAvailabilityCommandHandler_AwardedLoadStaysAvailable(t *testing.T) {
	f := newFixture(t)
	b := f.seedBid(f.seedLoad(), 1000, withBidStatus(bid.Accepted))
	l := f.seedLoad(withAward(load.Awarded, b, "PK-ZZZZZZ"))
	h := commands.NewSetLoadAvailabilityCommandHandler(memoryLoadFactory{f.store}, f.publisher, nil)

	cmd, err := commands.NewSetLoadAvailabilityCommand(l.ID(), false, f.shipper)
	require.NoError(t, err)
	_, err = h.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrTransitionDenied)
	assert.Equal(t, load.Awarded, f.store.loadByID(l.ID()).Status())
}
