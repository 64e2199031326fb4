package commands

import (
	"context"
	"errors"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AcceptBidResult is returned for both a fresh award and an idempotent replay.
// Warnings list the best-effort steps that failed; the award itself stands.
type AcceptBidResult struct {
	Bid             *bid.Bid
	Load            *load.Load
	InvoiceID       *kernel.UUID
	ShipmentID      *kernel.UUID
	AlreadyAccepted bool
	Warnings        []*errs.DependencyFailureError
}

// AcceptBidCommandHandler is the bid-acceptance orchestrator.
//
// The bid, its siblings, the load, the history records and the accept message
// change in one transaction with the load and bid rows locked, in that order.
// Invoice and shipment creation and event publishing run after commit and only
// add warnings when they fail.
//
// Accepting an already accepted bid succeeds without side effects. Accepting a
// bid on a load awarded to another bid is an *errs.ConflictError and changes
// nothing.
type AcceptBidCommandHandler struct {
	uowFactory UoWFactory
	codes      services.CodeGenerator
	artifacts  AwardArtifacts
	options    AwardOptions
	notifier   notifier
	logger     *zap.Logger
}

func NewAcceptBidCommandHandler(
	uowFactory UoWFactory,
	codes services.CodeGenerator,
	options AwardOptions,
	publisher ports.Publisher,
	logger *zap.Logger,
) AcceptBidCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return AcceptBidCommandHandler{
		uowFactory: uowFactory,
		codes:      codes,
		artifacts:  NewAwardArtifacts(codes, logger),
		options:    options,
		notifier:   newNotifier(publisher, logger),
		logger:     logger.With(zap.String("component", "accept_bid")),
	}
}

func (h AcceptBidCommandHandler) Handle(ctx context.Context, command AcceptBidCommand) (AcceptBidResult, error) {
	if err := command.Validate(); err != nil {
		return AcceptBidResult{}, err
	}
	if err := requireAdmin(command.Actor(), "accept a bid"); err != nil {
		return AcceptBidResult{}, err
	}

	ctx, span := tracer.Start(ctx, "AcceptBid", trace.WithAttributes(
		attribute.String("bid.id", command.BidID().String()),
	))
	defer span.End()

	res, rejected, err := h.award(ctx, command)
	if err != nil {
		span.RecordError(err)
		return AcceptBidResult{}, err
	}
	if res.AlreadyAccepted {
		return h.replay(ctx, res), nil
	}

	now := time.Now().UTC()
	out := h.artifacts.ensureAll(ctx, h.uowFactory.Create(), res.Load, command.IdempotencyKey(), h.options.ShipmentPolicy, now)
	res.InvoiceID, res.ShipmentID = out.invoiceID, out.shipmentID
	res.Warnings = append(res.Warnings, out.warnings...)

	events := []ports.Event{
		bidEvent(ports.EventBidAccepted, ports.UserScope(user.RoleCarrier, res.Bid.CarrierID()), res.Bid, now),
	}
	for _, b := range rejected {
		events = append(events, bidEvent(ports.EventBidRejected, ports.UserScope(user.RoleCarrier, b.CarrierID()), b, now))
	}
	events = append(events, loadEvents(res.Load, now)...)
	res.Warnings = append(res.Warnings, h.notifier.publish(ctx, events...)...)

	h.logger.Info("bid accepted",
		zap.String("bid_id", res.Bid.ID().String()),
		zap.String("load_id", res.Load.ID().String()),
		zap.Int("rejected_siblings", len(rejected)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// award runs the transactional steps and returns the auto-rejected siblings.
func (h AcceptBidCommandHandler) award(ctx context.Context, command AcceptBidCommand) (AcceptBidResult, []*bid.Bid, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AcceptBidResult{}, nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	bids := uow.BidRepository()
	loads := uow.LoadRepository()

	b, l, err := lockBidAndLoad(ctx, bids, loads, command.BidID())
	if err != nil {
		return AcceptBidResult{}, nil, err
	}

	if l.AwardedBidID() != nil {
		if l.IsAwardedTo(b.ID()) {
			return AcceptBidResult{Bid: b, Load: l, AlreadyAccepted: true}, nil, nil
		}
		return AcceptBidResult{}, nil, errs.NewConflictError("load", "load already awarded to another bid")
	}
	if b.Status() == bid.Accepted {
		return AcceptBidResult{Bid: b, Load: l, AlreadyAccepted: true}, nil, nil
	}
	if b.Status().IsTerminal() {
		return AcceptBidResult{}, nil, errs.NewTransitionDeniedError("bid", b.Status().String(), bid.Accepted.String())
	}
	if err = l.CanAward(b.CarrierID()); err != nil {
		return AcceptBidResult{}, nil, err
	}

	now := time.Now().UTC()
	actorID := command.Actor().ID
	amount := b.ResolveAcceptedAmount(command.FinalPrice())

	if err = b.Accept(amount, actorID, now); err != nil {
		return AcceptBidResult{}, nil, err
	}

	siblings, err := bids.ListByLoad(ctx, l.ID())
	if err != nil {
		return AcceptBidResult{}, nil, err
	}
	rejected := make([]*bid.Bid, 0, len(siblings))
	for _, s := range siblings {
		if s.ID().IsEqual(b.ID()) || !s.Status().IsActive() {
			continue
		}
		if err = s.Reject(bid.AutoRejectReason, actorID, now); err != nil {
			return AcceptBidResult{}, nil, err
		}
		if err = bids.Update(ctx, s); err != nil {
			return AcceptBidResult{}, nil, err
		}
		rejected = append(rejected, s)
	}

	pickupID, err := h.codes.PickupCode(ctx, loads.PickupCodeExists)
	if err != nil {
		return AcceptBidResult{}, nil, err
	}

	if err = l.Award(load.AwardParams{
		BidID:             b.ID(),
		CarrierID:         b.CarrierID(),
		TruckID:           b.TruckID(),
		FinalPrice:        amount,
		PickupID:          pickupID,
		ActorID:           actorID,
		AlsoCreateInvoice: h.options.InvoiceOnAward,
		Now:               now,
	}); err != nil {
		return AcceptBidResult{}, nil, err
	}

	if err = bids.Update(ctx, b); err != nil {
		return AcceptBidResult{}, nil, err
	}
	if err = loads.Update(ctx, l); err != nil {
		return AcceptBidResult{}, nil, err
	}

	msg, err := negotiation.NewMessage(b.ID(), l.ID(), command.Actor(), negotiation.TypeAccept,
		"bid accepted at "+amount.String(), &amount, now)
	if err != nil {
		return AcceptBidResult{}, nil, err
	}
	if err = uow.NegotiationRepository().Append(ctx, msg); err != nil {
		return AcceptBidResult{}, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AcceptBidResult{}, nil, err
	}

	return AcceptBidResult{Bid: b, Load: l}, rejected, nil
}

// replay fills in the artifact ids of an earlier award with read-only lookups.
func (h AcceptBidCommandHandler) replay(ctx context.Context, res AcceptBidResult) AcceptBidResult {
	uow := h.uowFactory.Create()

	if inv, err := uow.InvoiceRepository().GetByLoad(ctx, res.Load.ID()); err == nil {
		id := inv.ID()
		res.InvoiceID = &id
	} else if !errors.Is(err, errs.ErrObjectNotFound) {
		res.Warnings = append(res.Warnings, errs.NewDependencyFailureError("invoice", err))
	}

	if s, err := uow.ShipmentRepository().GetByLoad(ctx, res.Load.ID()); err == nil {
		id := s.ID()
		res.ShipmentID = &id
	} else if !errors.Is(err, errs.ErrObjectNotFound) {
		res.Warnings = append(res.Warnings, errs.NewDependencyFailureError("shipment", err))
	}

	return res
}
