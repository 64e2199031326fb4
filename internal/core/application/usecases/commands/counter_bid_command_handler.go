package commands

import (
	"context"
	"errors"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.uber.org/zap"
)

// CounterBidCommandHandler moves a pending bid to countered, nudges the load to
// counter_received and appends a counter_offer message, all in one transaction.
type CounterBidCommandHandler struct {
	uowFactory UoWFactory
	notifier   notifier
}

func NewCounterBidCommandHandler(uowFactory UoWFactory, publisher ports.Publisher, logger *zap.Logger) CounterBidCommandHandler {
	return CounterBidCommandHandler{uowFactory: uowFactory, notifier: newNotifier(publisher, logger)}
}

func (h CounterBidCommandHandler) Handle(ctx context.Context, command CounterBidCommand) (*bid.Bid, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	if err := requireAdmin(command.Actor(), "counter a bid"); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "CounterBid")
	defer span.End()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	bids := uow.BidRepository()
	loads := uow.LoadRepository()

	b, l, err := lockBidAndLoad(ctx, bids, loads, command.BidID())
	if err != nil {
		return nil, err
	}

	if !l.AllowCounterBids() {
		return nil, errs.NewTransitionDeniedErrorWithCause("bid", b.Status().String(), bid.Countered.String(),
			errors.New("counter bids are disabled for this load"))
	}
	if !l.Status().IsBiddable() {
		return nil, errs.NewTransitionDeniedErrorWithCause("bid", b.Status().String(), bid.Countered.String(),
			errors.New("load is not open for bidding"))
	}

	now := time.Now().UTC()
	actorID := command.Actor().ID
	amount := command.Amount()

	if err = b.Counter(amount, actorID, now); err != nil {
		return nil, err
	}
	if l.Status() == load.OpenForBid {
		if err = l.Transition(load.CounterReceived, actorID, "counter offer on bid "+b.ID().String(), now); err != nil {
			return nil, err
		}
	}

	content := command.Note()
	if content == "" {
		content = "counter offer " + amount.String()
	}
	msg, err := negotiation.NewMessage(b.ID(), l.ID(), command.Actor(), negotiation.TypeCounterOffer, content, &amount, now)
	if err != nil {
		return nil, err
	}

	if err = bids.Update(ctx, b); err != nil {
		return nil, err
	}
	if err = loads.Update(ctx, l); err != nil {
		return nil, err
	}
	if err = uow.NegotiationRepository().Append(ctx, msg); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	events := []ports.Event{bidEvent(ports.EventBidCountered, ports.UserScope(user.RoleCarrier, b.CarrierID()), b, now)}
	events = append(events, loadEvents(l, now)...)
	h.notifier.publish(ctx, events...)
	return b, nil
}
