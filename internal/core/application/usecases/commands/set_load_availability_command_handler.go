package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/load"
	"freight/internal/core/ports"

	"go.uber.org/zap"
)

// SetLoadAvailabilityCommandHandler toggles the unavailable state. Leaving it
// returns the load to the status it had before.
type SetLoadAvailabilityCommandHandler struct {
	uowFactory LoadUoWFactory
	notifier   notifier
}

func NewSetLoadAvailabilityCommandHandler(
	uowFactory LoadUoWFactory,
	publisher ports.Publisher,
	logger *zap.Logger,
) SetLoadAvailabilityCommandHandler {
	return SetLoadAvailabilityCommandHandler{uowFactory: uowFactory, notifier: newNotifier(publisher, logger)}
}

func (h SetLoadAvailabilityCommandHandler) Handle(ctx context.Context, command SetLoadAvailabilityCommand) (*load.Load, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

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

	if err = requireLoadOwnerOrAdmin(command.Actor(), l, "change load availability"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if command.Available() {
		err = l.RestoreAvailability(command.Actor().ID, now)
	} else {
		err = l.MarkUnavailable(command.Actor().ID, now)
	}
	if err != nil {
		return nil, err
	}

	if err = loads.Update(ctx, l); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.publish(ctx, loadEvents(l, now)...)
	return l, nil
}
