package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/load"
	"freight/internal/core/ports"

	"go.uber.org/zap"
)

// PriceLoadCommandHandler moves a pending load to priced, or re-prices a load
// that is still priced. Only admins price loads.
type PriceLoadCommandHandler struct {
	uowFactory LoadUoWFactory
	notifier   notifier
}

func NewPriceLoadCommandHandler(uowFactory LoadUoWFactory, publisher ports.Publisher, logger *zap.Logger) PriceLoadCommandHandler {
	return PriceLoadCommandHandler{uowFactory: uowFactory, notifier: newNotifier(publisher, logger)}
}

func (h PriceLoadCommandHandler) Handle(ctx context.Context, command PriceLoadCommand) (*load.Load, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	if err := requireAdmin(command.Actor(), "price a load"); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "PriceLoad")
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
	if err = l.Price(command.AdminFinalPrice(), command.Actor().ID, now); err != nil {
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
