package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/ports"

	"go.uber.org/zap"
)

// PostLoadCommandHandler runs the pricing-to-posting transition and announces
// the load to the carriers the posting mode admits.
type PostLoadCommandHandler struct {
	uowFactory LoadUoWFactory
	notifier   notifier
}

func NewPostLoadCommandHandler(uowFactory LoadUoWFactory, publisher ports.Publisher, logger *zap.Logger) PostLoadCommandHandler {
	return PostLoadCommandHandler{uowFactory: uowFactory, notifier: newNotifier(publisher, logger)}
}

func (h PostLoadCommandHandler) Handle(ctx context.Context, command PostLoadCommand) (*load.Load, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	if err := requireAdmin(command.Actor(), "post a load"); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "PostLoad")
	defer span.End()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	loads := uow.LoadRepository()

	l, err := loads.GetForUpdate(ctx, command.LoadID())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err = l.Post(command.Options(), command.Actor().ID, now); err != nil {
		return nil, err
	}

	if err = loads.Update(ctx, l); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	events := loadEvents(l, now)
	for _, scope := range postingAudience(l) {
		events = append(events, ports.Event{
			Type:       ports.EventLoadPosted,
			Scope:      scope,
			LoadID:     l.ID(),
			Payload:    loadChanged(l),
			OccurredAt: now,
		})
	}
	h.notifier.publish(ctx, events...)
	return l, nil
}

func postingAudience(l *load.Load) []ports.Scope {
	switch l.PostingMode() {
	case load.PostingInvite:
		ids := l.InvitedCarrierIDs()
		scopes := make([]ports.Scope, 0, len(ids))
		for _, id := range ids {
			scopes = append(scopes, ports.UserScope(user.RoleCarrier, id))
		}
		return scopes
	case load.PostingAssign:
		return []ports.Scope{ports.UserScope(user.RoleCarrier, *l.AssignedCarrierID())}
	default:
		return []ports.Scope{ports.RoleScope(user.RoleCarrier)}
	}
}
