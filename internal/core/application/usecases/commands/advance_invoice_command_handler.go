package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InvoiceChanged is the payload of invoice.updated events.
type InvoiceChanged struct {
	InvoiceID kernel.UUID    `json:"invoiceId"`
	LoadID    kernel.UUID    `json:"loadId"`
	Number    string         `json:"number"`
	Status    invoice.Status `json:"status"`
}

type AdvanceInvoiceResult struct {
	Load       *load.Load
	Invoice    *invoice.Invoice
	ShipmentID *kernel.UUID
	Warnings   []*errs.DependencyFailureError
}

// AdvanceInvoiceCommandHandler moves the invoice and the load's invoice_*
// status together. A load whose invoice was never created gets one first.
// Under the deferred shipment policy, acknowledging the invoice creates the
// shipment after commit.
type AdvanceInvoiceCommandHandler struct {
	uowFactory UoWFactory
	artifacts  AwardArtifacts
	policy     ShipmentPolicy
	notifier   notifier
}

func NewAdvanceInvoiceCommandHandler(
	uowFactory UoWFactory,
	codes services.CodeGenerator,
	policy ShipmentPolicy,
	publisher ports.Publisher,
	logger *zap.Logger,
) AdvanceInvoiceCommandHandler {
	return AdvanceInvoiceCommandHandler{
		uowFactory: uowFactory,
		artifacts:  NewAwardArtifacts(codes, logger),
		policy:     policy,
		notifier:   newNotifier(publisher, logger),
	}
}

func (h AdvanceInvoiceCommandHandler) Handle(ctx context.Context, command AdvanceInvoiceCommand) (AdvanceInvoiceResult, error) {
	if err := command.Validate(); err != nil {
		return AdvanceInvoiceResult{}, err
	}

	ctx, span := tracer.Start(ctx, "AdvanceInvoice", trace.WithAttributes(
		attribute.String("load.id", command.LoadID().String()),
		attribute.String("invoice.action", string(command.Action())),
	))
	defer span.End()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AdvanceInvoiceResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	loads := uow.LoadRepository()
	invoices := uow.InvoiceRepository()

	l, err := loads.GetForUpdate(ctx, command.LoadID())
	if err != nil {
		return AdvanceInvoiceResult{}, err
	}
	if err = command.Action().authorize(command.Actor(), l); err != nil {
		return AdvanceInvoiceResult{}, err
	}
	if l.AwardedBidID() == nil {
		return AdvanceInvoiceResult{}, errs.NewTransitionDeniedError("load", l.Status().String(), command.Action().target().String())
	}

	now := time.Now().UTC()
	inv, err := h.artifacts.EnsureInvoice(ctx, invoices, l, AwardKey(*l.AwardedBidID()), now)
	if err != nil {
		return AdvanceInvoiceResult{}, err
	}

	if err = applyInvoiceAction(l, inv, command.Action(), command.Actor().ID, command.Note(), command.RevisedAmount(), now); err != nil {
		span.RecordError(err)
		return AdvanceInvoiceResult{}, err
	}
	if err = invoices.Update(ctx, inv); err != nil {
		return AdvanceInvoiceResult{}, err
	}
	if err = loads.Update(ctx, l); err != nil {
		return AdvanceInvoiceResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AdvanceInvoiceResult{}, err
	}

	res := AdvanceInvoiceResult{Load: l, Invoice: inv}
	if command.Action() == InvoiceAcknowledge {
		out := h.artifacts.ensureDeferredShipment(ctx, h.uowFactory.Create(), l, h.policy, now)
		res.ShipmentID = out.shipmentID
		res.Warnings = append(res.Warnings, out.warnings...)
	}

	payload := InvoiceChanged{InvoiceID: inv.ID(), LoadID: l.ID(), Number: inv.Number(), Status: inv.Status()}
	events := make([]ports.Event, 0, 6)
	for _, scope := range loadAudience(l) {
		events = append(events, ports.Event{
			Type:       ports.EventInvoiceUpdated,
			Scope:      scope,
			LoadID:     l.ID(),
			Payload:    payload,
			OccurredAt: now,
		})
	}
	events = append(events, loadEvents(l, now)...)
	res.Warnings = append(res.Warnings, h.notifier.publish(ctx, events...)...)
	return res, nil
}
