package queries

import (
	"context"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/pkg/errs"
)

// GetNegotiationThreadQueryHandler assembles a bid's message log and derives
// the current offer of each side from it. Numbers below floor found in free
// text are not treated as offers.
type GetNegotiationThreadQueryHandler struct {
	uowFactory ReadUoWFactory
	floor      kernel.Money
}

func NewGetNegotiationThreadQueryHandler(uowFactory ReadUoWFactory, floor kernel.Money) GetNegotiationThreadQueryHandler {
	return GetNegotiationThreadQueryHandler{uowFactory: uowFactory, floor: floor}
}

// Handle returns the thread for admins, the bidding carrier and the owning
// shipper. Shippers get the messages without amounts and without offers.
func (h GetNegotiationThreadQueryHandler) Handle(
	ctx context.Context,
	query GetNegotiationThreadQuery,
) (*NegotiationThread, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	actor := query.Actor()

	b, err := uow.BidRepository().Get(ctx, query.BidID())
	if err != nil {
		return nil, err
	}
	l, err := uow.LoadRepository().Get(ctx, b.LoadID())
	if err != nil {
		return nil, err
	}

	redact := false
	switch {
	case actor.IsAdmin():
	case actor.IsCarrier() && b.IsOwnedBy(actor.ID):
	case actor.IsShipper() && l.ShipperID().IsEqual(actor.ID):
		redact = true
	default:
		return nil, errs.NewForbiddenError(actor.String(), "read negotiation of bid "+b.ID().String())
	}

	log, err := uow.NegotiationRepository().ListByBid(ctx, b.ID())
	if err != nil {
		return nil, err
	}

	thread := &NegotiationThread{
		BidID:     b.ID(),
		LoadID:    b.LoadID(),
		CarrierID: b.CarrierID(),
		Status:    b.Status(),
		Messages:  make([]ThreadMessage, 0, len(log)),
	}
	for _, m := range log {
		msg := ThreadMessage{
			ID:         m.ID(),
			SenderID:   m.SenderID(),
			SenderRole: m.SenderRole(),
			Type:       m.Type(),
			Content:    m.Content(),
			Amount:     m.Amount(),
			CreatedAt:  m.CreatedAt(),
		}
		if redact {
			msg.Amount = nil
		}
		thread.Messages = append(thread.Messages, msg)
	}

	if !redact {
		offers := negotiation.DeriveOffers(log, b, l.AdminFinalPrice(), h.floor)
		thread.Offers = &offers
	}
	return thread, nil
}
