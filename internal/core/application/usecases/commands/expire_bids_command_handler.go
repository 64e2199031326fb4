package commands

import (
	"context"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/ports"

	"go.uber.org/zap"
)

// ExpireBidsCommandHandler sweeps stale bids in one transaction. The load is
// left where it is: an expired counter does not reopen bidding on its own.
type ExpireBidsCommandHandler struct {
	uowFactory UoWFactory
	notifier   notifier
}

func NewExpireBidsCommandHandler(uowFactory UoWFactory, publisher ports.Publisher, logger *zap.Logger) ExpireBidsCommandHandler {
	return ExpireBidsCommandHandler{uowFactory: uowFactory, notifier: newNotifier(publisher, logger)}
}

// Handle returns the expired bids.
func (h ExpireBidsCommandHandler) Handle(ctx context.Context, command ExpireBidsCommand) ([]*bid.Bid, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "ExpireBids")
	defer span.End()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	bids := uow.BidRepository()
	now := command.Now()

	candidates, err := bids.ListExpired(ctx, now, command.Limit())
	if err != nil {
		return nil, err
	}

	expired := make([]*bid.Bid, 0, len(candidates))
	for _, b := range candidates {
		if !b.IsExpiredAt(now) {
			continue
		}
		if err = b.Expire(now); err != nil {
			return nil, err
		}
		if err = bids.Update(ctx, b); err != nil {
			return nil, err
		}
		expired = append(expired, b)
	}

	if len(expired) == 0 {
		return expired, nil
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	events := make([]ports.Event, 0, len(expired))
	for _, b := range expired {
		events = append(events, bidEvent(ports.EventBidExpired, ports.UserScope(user.RoleCarrier, b.CarrierID()), b, now))
	}
	h.notifier.publish(ctx, events...)
	return expired, nil
}
