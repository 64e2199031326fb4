package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.uber.org/zap"
)

// MessagePosted is the payload of negotiation.message events.
type MessagePosted struct {
	MessageID  kernel.UUID             `json:"messageId"`
	BidID      kernel.UUID             `json:"bidId"`
	SenderRole user.Role               `json:"senderRole"`
	Type       negotiation.MessageType `json:"type"`
	Content    string                  `json:"content"`
}

// PostNegotiationMessageCommandHandler lets the parties of a bid talk: the
// carrier that placed it, the admin and the shipper owning the load. The
// message goes to the other side: admin → carrier, everyone else → admins.
type PostNegotiationMessageCommandHandler struct {
	uowFactory UoWFactory
	notifier   notifier
}

func NewPostNegotiationMessageCommandHandler(
	uowFactory UoWFactory,
	publisher ports.Publisher,
	logger *zap.Logger,
) PostNegotiationMessageCommandHandler {
	return PostNegotiationMessageCommandHandler{uowFactory: uowFactory, notifier: newNotifier(publisher, logger)}
}

func (h PostNegotiationMessageCommandHandler) Handle(
	ctx context.Context,
	command PostNegotiationMessageCommand,
) (*negotiation.Message, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "PostNegotiationMessage")
	defer span.End()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	b, err := uow.BidRepository().Get(ctx, command.BidID())
	if err != nil {
		return nil, err
	}
	l, err := uow.LoadRepository().Get(ctx, b.LoadID())
	if err != nil {
		return nil, err
	}

	actor := command.Actor()
	switch {
	case actor.IsAdmin():
	case actor.IsCarrier() && b.IsOwnedBy(actor.ID):
	case actor.IsShipper() && l.ShipperID().IsEqual(actor.ID):
	default:
		return nil, errs.NewForbiddenError(actor.Role.String(), "message on this bid")
	}
	if b.Status().IsTerminal() {
		return nil, errs.NewConflictError("negotiation", "bid is "+b.Status().String())
	}

	now := time.Now().UTC()
	msg, err := negotiation.NewMessage(b.ID(), l.ID(), actor, negotiation.TypeMessage, command.Content(), command.Amount(), now)
	if err != nil {
		return nil, err
	}
	if err = uow.NegotiationRepository().Append(ctx, msg); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	scope := ports.RoleScope(user.RoleAdmin)
	if actor.IsAdmin() {
		scope = ports.UserScope(user.RoleCarrier, b.CarrierID())
	}
	h.notifier.publish(ctx, ports.Event{
		Type:   ports.EventNegotiationMessage,
		Scope:  scope,
		LoadID: l.ID(),
		Payload: MessagePosted{
			MessageID:  msg.ID(),
			BidID:      b.ID(),
			SenderRole: actor.Role,
			Type:       msg.Type(),
			Content:    msg.Content(),
		},
		OccurredAt: now,
	})
	return msg, nil
}
