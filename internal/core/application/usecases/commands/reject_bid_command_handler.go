package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.uber.org/zap"
)

// RejectBidCommandHandler rejects a bid and appends a reject message. When the
// load sits in counter_received and no countered bid remains, the load goes
// back to open_for_bid.
type RejectBidCommandHandler struct {
	uowFactory UoWFactory
	notifier   notifier
}

func NewRejectBidCommandHandler(uowFactory UoWFactory, publisher ports.Publisher, logger *zap.Logger) RejectBidCommandHandler {
	return RejectBidCommandHandler{uowFactory: uowFactory, notifier: newNotifier(publisher, logger)}
}

func (h RejectBidCommandHandler) Handle(ctx context.Context, command RejectBidCommand) (*bid.Bid, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "RejectBid")
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

	actor := command.Actor()
	if !actor.IsAdmin() && !(actor.IsCarrier() && b.IsOwnedBy(actor.ID)) {
		return nil, errs.NewForbiddenError(actor.Role.String(), "reject this bid")
	}

	now := time.Now().UTC()
	reason := command.Reason()
	if reason == "" {
		reason = "rejected by " + actor.Role.String()
	}
	if err = b.Reject(reason, actor.ID, now); err != nil {
		return nil, err
	}
	if err = bids.Update(ctx, b); err != nil {
		return nil, err
	}

	loadChangedStatus := false
	if l.Status() == load.CounterReceived {
		open, listErr := hasCounteredBid(ctx, bids, l, b)
		if listErr != nil {
			return nil, listErr
		}
		if !open {
			if err = l.Transition(load.OpenForBid, actor.ID, "no counter offer outstanding", now); err != nil {
				return nil, err
			}
			if err = loads.Update(ctx, l); err != nil {
				return nil, err
			}
			loadChangedStatus = true
		}
	}

	msg, err := negotiation.NewMessage(b.ID(), l.ID(), actor, negotiation.TypeReject, reason, nil, now)
	if err != nil {
		return nil, err
	}
	if err = uow.NegotiationRepository().Append(ctx, msg); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	events := []ports.Event{
		bidEvent(ports.EventBidRejected, ports.UserScope(user.RoleCarrier, b.CarrierID()), b, now),
		bidEvent(ports.EventBidRejected, ports.RoleScope(user.RoleAdmin), b, now),
	}
	if loadChangedStatus {
		events = append(events, loadEvents(l, now)...)
	}
	h.notifier.publish(ctx, events...)
	return b, nil
}

func hasCounteredBid(ctx context.Context, bids ports.BidRepository, l *load.Load, except *bid.Bid) (bool, error) {
	all, err := bids.ListByLoad(ctx, l.ID())
	if err != nil {
		return false, err
	}
	for _, other := range all {
		if !other.ID().IsEqual(except.ID()) && other.Status() == bid.Countered {
			return true, nil
		}
	}
	return false, nil
}
