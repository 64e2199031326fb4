package commands_test

import (
	"testing"
	"time"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterBidCommandHandler(t *testing.T) {
	t.Run("counters a pending bid and nudges the load", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewCounterBidCommand(b.ID(), kernel.MustMoney(1200), f.admin, "")
		require.NoError(t, err)

		got, err := commands.NewCounterBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, bid.Countered, got.Status())
		assert.True(t, f.store.bidByID(b.ID()).CounterAmount().Equal(kernel.MustMoney(1200)))
		assert.Equal(t, load.CounterReceived, f.store.loadByID(l.ID()).Status())

		messages := f.store.messagesOf(b.ID())
		require.Len(t, messages, 1)
		assert.Equal(t, negotiation.TypeCounterOffer, messages[0].Type())
		assert.True(t, messages[0].Amount().Equal(kernel.MustMoney(1200)))

		countered := f.publisher.ofType(ports.EventBidCountered)
		require.Len(t, countered, 1)
		assert.True(t, countered[0].Scope.Matches(user.RoleCarrier, b.CarrierID()))
	})

	t.Run("second counter on the load keeps counter_received", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad(withStatus(load.CounterReceived))
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewCounterBidCommand(b.ID(), kernel.MustMoney(1100), f.admin, "meet me here")
		require.NoError(t, err)

		_, err = commands.NewCounterBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, load.CounterReceived, f.store.loadByID(l.ID()).Status())
		assert.Equal(t, "meet me here", f.store.messagesOf(b.ID())[0].Content())
	})

	t.Run("counter bids disabled", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad(withoutCounterBids())
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewCounterBidCommand(b.ID(), kernel.MustMoney(1200), f.admin, "")
		require.NoError(t, err)

		_, err = commands.NewCounterBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrTransitionDenied)
		assert.Equal(t, bid.Pending, f.store.bidByID(b.ID()).Status())
		assert.Empty(t, f.store.messagesOf(b.ID()))
	})

	t.Run("countered bid cannot be countered again", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad(withStatus(load.CounterReceived))
		b := f.seedBid(l, 1000, withCounter(1200))
		cmd, err := commands.NewCounterBidCommand(b.ID(), kernel.MustMoney(1150), f.admin, "")
		require.NoError(t, err)

		_, err = commands.NewCounterBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		var denied *errs.TransitionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "bid", denied.Entity)
	})

	t.Run("carrier may not counter", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewCounterBidCommand(b.ID(), kernel.MustMoney(1200), carrierActor(b.CarrierID()), "")
		require.NoError(t, err)

		_, err = commands.NewCounterBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestRejectBidCommandHandler(t *testing.T) {
	t.Run("carrier withdraws its own bid", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewRejectBidCommand(b.ID(), carrierActor(b.CarrierID()), "found another load")
		require.NoError(t, err)

		got, err := commands.NewRejectBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, bid.Rejected, got.Status())
		assert.Equal(t, "found another load", f.store.bidByID(b.ID()).RejectionReason())
		messages := f.store.messagesOf(b.ID())
		require.Len(t, messages, 1)
		assert.Equal(t, negotiation.TypeReject, messages[0].Type())
		assert.Len(t, f.publisher.ofType(ports.EventBidRejected), 2)
	})

	t.Run("carrier may not reject another carrier's bid", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewRejectBidCommand(b.ID(), carrierActor(kernel.NewUUID()), "")
		require.NoError(t, err)

		_, err = commands.NewRejectBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, bid.Pending, f.store.bidByID(b.ID()).Status())
	})

	t.Run("rejecting the last countered bid reopens bidding", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad(withStatus(load.CounterReceived))
		b := f.seedBid(l, 1000, withCounter(1200))
		f.seedBid(l, 1100)
		cmd, err := commands.NewRejectBidCommand(b.ID(), f.admin, "")
		require.NoError(t, err)

		_, err = commands.NewRejectBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, load.OpenForBid, f.store.loadByID(l.ID()).Status())
		assert.Equal(t, "rejected by admin", f.store.bidByID(b.ID()).RejectionReason())
		assert.NotEmpty(t, f.publisher.ofType(ports.EventLoadUpdated))
	})

	t.Run("another countered bid keeps counter_received", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad(withStatus(load.CounterReceived))
		b := f.seedBid(l, 1000, withCounter(1200))
		f.seedBid(l, 1100, withCounter(1150))
		cmd, err := commands.NewRejectBidCommand(b.ID(), f.admin, "")
		require.NoError(t, err)

		_, err = commands.NewRejectBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, load.CounterReceived, f.store.loadByID(l.ID()).Status())
		assert.Empty(t, f.publisher.ofType(ports.EventLoadUpdated))
	})

	t.Run("accepted bid cannot be rejected", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000, withBidStatus(bid.Accepted))
		cmd, err := commands.NewRejectBidCommand(b.ID(), f.admin, "")
		require.NoError(t, err)

		_, err = commands.NewRejectBidCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrTransitionDenied)
	})
}

func (f *fixture) placeBidHandler(ttl time.Duration, missingBlocks bool) commands.PlaceBidCommandHandler {
	return commands.NewPlaceBidCommandHandler(
		f.store,
		services.NewEligibilityFilter(services.DefaultEligibilityPolicy()),
		services.NewComplianceChecker(missingBlocks),
		ttl,
		f.publisher,
		nil,
	)
}

func TestPlaceBidCommandHandler(t *testing.T) {
	t.Run("first bid opens bidding on a posted load", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad(withStatus(load.PostedToCarriers))
		carrierID := f.seedCarrier(true)
		cmd, err := commands.NewPlaceBidCommand(l.ID(), carrierActor(carrierID), nil, kernel.MustMoney(1000), "reefer ready")
		require.NoError(t, err)

		res, err := f.placeBidHandler(2*time.Hour, false).Handle(t.Context(), cmd)

		require.NoError(t, err)
		require.NotNil(t, res.Bid)
		assert.Equal(t, bid.Pending, res.Bid.Status())
		require.NotNil(t, res.Bid.ExpiresAt())
		assert.WithinDuration(t, time.Now().Add(2*time.Hour), *res.Bid.ExpiresAt(), time.Minute)
		assert.True(t, res.Eligibility.Eligible)
		assert.True(t, res.Compliance.Compliant)

		assert.NotNil(t, f.store.bidByID(res.Bid.ID()))
		assert.Equal(t, load.OpenForBid, f.store.loadByID(l.ID()).Status())

		placed := f.publisher.ofType(ports.EventBidPlaced)
		require.Len(t, placed, 1)
		assert.Equal(t, ports.RoleScope(user.RoleAdmin), placed[0].Scope)
	})

	t.Run("zero ttl places a bid without expiry", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		carrierID := f.seedCarrier(true)
		cmd, err := commands.NewPlaceBidCommand(l.ID(), carrierActor(carrierID), nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)

		res, err := f.placeBidHandler(0, false).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Nil(t, res.Bid.ExpiresAt())
		assert.Empty(t, f.publisher.ofType(ports.EventLoadUpdated))
	})

	t.Run("second active bid by the same carrier is a conflict", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		carrierID := f.seedCarrier(true)
		f.seedBid(l, 900, withCarrier(carrierID))
		cmd, err := commands.NewPlaceBidCommand(l.ID(), carrierActor(carrierID), nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)

		_, err = f.placeBidHandler(0, false).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("expired insurance blocks the bid", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		carrierID := f.seedCarrier(false)
		valid := f.documents(carrierID, time.Now().AddDate(1, 0, 0),
			carrier.DocLicense, carrier.DocRegistration, carrier.DocPermit, carrier.DocFitness, carrier.DocPollution)
		expired := f.documents(carrierID, time.Now().AddDate(0, 0, -1), carrier.DocInsurance)
		f.store.state.documents[carrierID] = append(valid, expired...)
		cmd, err := commands.NewPlaceBidCommand(l.ID(), carrierActor(carrierID), nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)

		_, err = f.placeBidHandler(0, false).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Contains(t, err.Error(), "insurance")
		assert.Zero(t, f.publisher.count())
	})

	t.Run("missing fitness is advisory by default", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		carrierID := f.seedCarrier(false)
		f.store.state.documents[carrierID] = f.documents(carrierID, time.Now().AddDate(1, 0, 0),
			carrier.DocLicense, carrier.DocRegistration, carrier.DocInsurance, carrier.DocPermit, carrier.DocPollution)
		cmd, err := commands.NewPlaceBidCommand(l.ID(), carrierActor(carrierID), nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)

		res, err := f.placeBidHandler(0, false).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.True(t, res.Compliance.Compliant)
		assert.Equal(t, []carrier.DocumentType{carrier.DocFitness}, res.Compliance.Missing)
	})

	t.Run("missing documents block under policy", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		carrierID := f.seedCarrier(false)
		cmd, err := commands.NewPlaceBidCommand(l.ID(), carrierActor(carrierID), nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)

		_, err = f.placeBidHandler(0, true).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("invite mode admits only invited carriers", func(t *testing.T) {
		f := newFixture(t)
		invited := f.seedCarrier(true)
		outsider := f.seedCarrier(true)
		l := f.seedLoad(withInvited(invited))
		handler := f.placeBidHandler(0, false)

		cmd, err := commands.NewPlaceBidCommand(l.ID(), carrierActor(outsider), nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)
		_, err = handler.Handle(t.Context(), cmd)
		require.ErrorIs(t, err, errs.ErrForbidden)

		cmd, err = commands.NewPlaceBidCommand(l.ID(), carrierActor(invited), nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)
		_, err = handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
	})

	t.Run("closed load takes no bids", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad(withStatus(load.Priced))
		carrierID := f.seedCarrier(true)
		cmd, err := commands.NewPlaceBidCommand(l.ID(), carrierActor(carrierID), nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)

		_, err = f.placeBidHandler(0, false).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrTransitionDenied)
	})

	t.Run("only carriers bid", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		cmd, err := commands.NewPlaceBidCommand(l.ID(), f.shipper, nil, kernel.MustMoney(1000), "")
		require.NoError(t, err)

		_, err = f.placeBidHandler(0, false).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestPostNegotiationMessageCommandHandler(t *testing.T) {
	t.Run("carrier message goes to admins", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewPostNegotiationMessageCommand(b.ID(), carrierActor(b.CarrierID()), "sounds good, 1150 works", nil)
		require.NoError(t, err)

		msg, err := commands.NewPostNegotiationMessageCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, negotiation.TypeMessage, msg.Type())
		assert.Len(t, f.store.messagesOf(b.ID()), 1)
		events := f.publisher.ofType(ports.EventNegotiationMessage)
		require.Len(t, events, 1)
		assert.Equal(t, ports.RoleScope(user.RoleAdmin), events[0].Scope)
	})

	t.Run("admin message goes to the bidding carrier", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewPostNegotiationMessageCommand(b.ID(), f.admin, "can you do 1100?", money(1100))
		require.NoError(t, err)

		_, err = commands.NewPostNegotiationMessageCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.NoError(t, err)
		events := f.publisher.ofType(ports.EventNegotiationMessage)
		require.Len(t, events, 1)
		assert.True(t, events[0].Scope.Matches(user.RoleCarrier, b.CarrierID()))
	})

	t.Run("other carriers may not post", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000)
		cmd, err := commands.NewPostNegotiationMessageCommand(b.ID(), carrierActor(kernel.NewUUID()), "hello", nil)
		require.NoError(t, err)

		_, err = commands.NewPostNegotiationMessageCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Empty(t, f.store.messagesOf(b.ID()))
	})

	t.Run("closed negotiation", func(t *testing.T) {
		f := newFixture(t)
		l := f.seedLoad()
		b := f.seedBid(l, 1000, withBidStatus(bid.Expired))
		cmd, err := commands.NewPostNegotiationMessageCommand(b.ID(), f.admin, "still there?", nil)
		require.NoError(t, err)

		_, err = commands.NewPostNegotiationMessageCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
	})
}

func TestExpireBidsCommandHandler_ExpiresOnlyStaleActiveBids(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad()
	now := time.Now().UTC()
	stale := f.seedBid(l, 1000, withExpiry(now.Add(-time.Minute)))
	staleCountered := f.seedBid(l, 1010, withCounter(1100), withExpiry(now.Add(-time.Second)))
	fresh := f.seedBid(l, 1020, withExpiry(now.Add(time.Hour)))
	open := f.seedBid(l, 1030)
	closed := f.seedBid(l, 1040, withBidStatus(bid.Rejected), withExpiry(now.Add(-time.Hour)))

	cmd, err := commands.NewExpireBidsCommand(now, 100)
	require.NoError(t, err)

	expired, err := commands.NewExpireBidsCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Len(t, expired, 2)
	assert.Equal(t, bid.Expired, f.store.bidByID(stale.ID()).Status())
	assert.Equal(t, bid.Expired, f.store.bidByID(staleCountered.ID()).Status())
	assert.Equal(t, bid.Pending, f.store.bidByID(fresh.ID()).Status())
	assert.Equal(t, bid.Pending, f.store.bidByID(open.ID()).Status())
	assert.Equal(t, bid.Rejected, f.store.bidByID(closed.ID()).Status())

	events := f.publisher.ofType(ports.EventBidExpired)
	require.Len(t, events, 2)
	assert.True(t, events[0].Scope.Matches(user.RoleCarrier, stale.CarrierID()))
}

func TestExpireBidsCommandHandler_NothingToExpire(t *testing.T) {
	f := newFixture(t)
	l := f.seedLoad()
	f.seedBid(l, 1000)
	cmd, err := commands.NewExpireBidsCommand(time.Now(), 10)
	require.NoError(t, err)

	expired, err := commands.NewExpireBidsCommandHandler(f.store, f.publisher, nil).Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Empty(t, expired)
	assert.Zero(t, f.publisher.count())
}
