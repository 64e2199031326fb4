package commands

import (
	"context"
	"errors"
	"time"

	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TransitionLoadCommandHandler is the lifecycle engine's single entry point for
// status changes. It authorizes the actor, validates the edge, keeps the
// invoice and shipment in step with the load, and records history in the same
// transaction.
//
// The award edge is not reachable here: a load becomes awarded only by
// accepting a bid.
type TransitionLoadCommandHandler struct {
	uowFactory UoWFactory
	artifacts  AwardArtifacts
	policy     ShipmentPolicy
	notifier   notifier
}

func NewTransitionLoadCommandHandler(
	uowFactory UoWFactory,
	codes services.CodeGenerator,
	policy ShipmentPolicy,
	publisher ports.Publisher,
	logger *zap.Logger,
) TransitionLoadCommandHandler {
	return TransitionLoadCommandHandler{
		uowFactory: uowFactory,
		artifacts:  NewAwardArtifacts(codes, logger),
		policy:     policy,
		notifier:   newNotifier(publisher, logger),
	}
}

// Handle returns the updated load. A denied edge yields *errs.TransitionDeniedError
// and a role violation *errs.ForbiddenError; in both cases nothing is written.
func (h TransitionLoadCommandHandler) Handle(ctx context.Context, command TransitionLoadCommand) (*load.Load, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "TransitionLoad", trace.WithAttributes(
		attribute.String("load.id", command.LoadID().String()),
		attribute.String("load.target", command.Target().String()),
	))
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

	if err = authorizeTransition(command.Actor(), l, command.Target()); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err = h.apply(ctx, uow, l, command, now); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err = loads.Update(ctx, l); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	// Failures are logged and left to the repair job.
	h.artifacts.ensureDeferredShipment(ctx, h.uowFactory.Create(), l, h.policy, now)

	h.notifier.publish(ctx, loadEvents(l, now)...)
	return l, nil
}

func (h TransitionLoadCommandHandler) apply(ctx context.Context, uow UoW, l *load.Load, command TransitionLoadCommand, now time.Time) error {
	actorID := command.Actor().ID

	if err := load.ValidateTransition(l.Status(), command.Target()); err != nil {
		return err
	}
	if command.Target() == load.Awarded {
		return errs.NewTransitionDeniedErrorWithCause("load", l.Status().String(), load.Awarded.String(),
			errors.New("loads are awarded by accepting a bid"))
	}
	if command.Target() == load.InvoiceCreated && l.Status() == load.Awarded && l.AwardedBidID() == nil {
		return errs.NewTransitionDeniedErrorWithCause("load", l.Status().String(), load.InvoiceCreated.String(),
			errors.New("load has no accepted bid"))
	}

	if action, ok := invoiceActionForEdge(l.Status(), command.Target()); ok {
		invoices := uow.InvoiceRepository()
		inv, err := h.invoiceOf(ctx, invoices, l, now)
		if err != nil {
			return err
		}
		if err = applyInvoiceAction(l, inv, action, actorID, command.Note(), nil, now); err != nil {
			return err
		}
		if err = invoices.Update(ctx, inv); err != nil {
			return err
		}
	} else if err := l.Transition(command.Target(), actorID, command.Note(), now); err != nil {
		return err
	}

	return syncShipment(ctx, uow.ShipmentRepository(), l, now)
}

// invoiceOf returns the invoice an invoice edge acts on, creating it for an
// awarded load whose invoice step failed.
func (h TransitionLoadCommandHandler) invoiceOf(ctx context.Context, repo ports.InvoiceRepository, l *load.Load, now time.Time) (*invoice.Invoice, error) {
	if l.AwardedBidID() == nil {
		return repo.GetByLoad(ctx, l.ID())
	}
	return h.artifacts.EnsureInvoice(ctx, repo, l, AwardKey(*l.AwardedBidID()), now)
}

// syncShipment follows the load into in_transit and delivered. A load without
// a shipment (deferred policy, failed creation) is left to the repair job.
func syncShipment(ctx context.Context, repo ports.ShipmentRepository, l *load.Load, now time.Time) error {
	if l.Status() != load.InTransit && l.Status() != load.Delivered {
		return nil
	}

	s, err := repo.GetByLoad(ctx, l.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if l.Status() == load.InTransit {
		err = s.Start(now)
	} else {
		err = s.Deliver(now)
	}
	if err != nil {
		return err
	}
	return repo.Update(ctx, s)
}
