package commands

import (
	"context"
	"strings"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PlaceBidResult carries the new bid and the advisory findings the carrier
// should see (soft eligibility warnings, missing documents).
type PlaceBidResult struct {
	Bid         *bid.Bid
	Eligibility services.EligibilityResult
	Compliance  services.ComplianceResult
}

// PlaceBidCommandHandler admits a carrier bid. The carrier must be eligible
// for the load and compliant on documents, and may hold only one active bid
// per load. The first bid opens bidding on a freshly posted load.
type PlaceBidCommandHandler struct {
	uowFactory  UoWFactory
	eligibility services.EligibilityFilter
	compliance  services.ComplianceChecker
	ttl         time.Duration
	notifier    notifier
}

// NewPlaceBidCommandHandler: a zero ttl places bids without expiry.
func NewPlaceBidCommandHandler(
	uowFactory UoWFactory,
	eligibility services.EligibilityFilter,
	compliance services.ComplianceChecker,
	ttl time.Duration,
	publisher ports.Publisher,
	logger *zap.Logger,
) PlaceBidCommandHandler {
	return PlaceBidCommandHandler{
		uowFactory:  uowFactory,
		eligibility: eligibility,
		compliance:  compliance,
		ttl:         ttl,
		notifier:    newNotifier(publisher, logger),
	}
}

func (h PlaceBidCommandHandler) Handle(ctx context.Context, command PlaceBidCommand) (PlaceBidResult, error) {
	if err := command.Validate(); err != nil {
		return PlaceBidResult{}, err
	}
	actor := command.Actor()
	if !actor.IsCarrier() {
		return PlaceBidResult{}, errs.NewForbiddenError(actor.Role.String(), "place a bid")
	}

	ctx, span := tracer.Start(ctx, "PlaceBid", trace.WithAttributes(
		attribute.String("load.id", command.LoadID().String()),
	))
	defer span.End()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PlaceBidResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	loads := uow.LoadRepository()
	bids := uow.BidRepository()
	carriers := uow.CarrierRepository()

	l, err := loads.GetForUpdate(ctx, command.LoadID())
	if err != nil {
		return PlaceBidResult{}, err
	}
	profile, err := carriers.GetProfile(ctx, actor.ID)
	if err != nil {
		return PlaceBidResult{}, err
	}
	documents, err := carriers.ListDocuments(ctx, actor.ID)
	if err != nil {
		return PlaceBidResult{}, err
	}

	now := time.Now().UTC()
	res := PlaceBidResult{
		Eligibility: h.eligibility.Check(profile, l),
		Compliance:  h.compliance.Check(documents, now),
	}
	if !l.Status().IsBiddable() {
		return PlaceBidResult{}, errs.NewTransitionDeniedError("load", l.Status().String(), "bid")
	}
	if !res.Eligibility.Eligible {
		return PlaceBidResult{}, errs.NewForbiddenError(actor.Role.String(),
			"bid on this load: "+strings.Join(res.Eligibility.Reasons, "; "))
	}
	if !res.Compliance.Compliant {
		return PlaceBidResult{}, errs.NewForbiddenError(actor.Role.String(),
			"bid while non-compliant: "+res.Compliance.Reason)
	}

	active, err := bids.HasActiveBid(ctx, l.ID(), actor.ID)
	if err != nil {
		return PlaceBidResult{}, err
	}
	if active {
		return PlaceBidResult{}, errs.NewConflictError("bid", "carrier already holds an active bid on this load")
	}

	var expiresAt *time.Time
	if h.ttl > 0 {
		at := now.Add(h.ttl)
		expiresAt = &at
	}

	b, err := bid.NewBid(kernel.NewUUID(), l.ID(), actor.ID, command.TruckID(), command.Amount(), command.Notes(), expiresAt, now)
	if err != nil {
		return PlaceBidResult{}, err
	}
	if err = bids.Add(ctx, b); err != nil {
		return PlaceBidResult{}, err
	}

	before := l.Status()
	if err = l.OpenBidding(actor.ID, now); err != nil {
		return PlaceBidResult{}, err
	}
	if l.Status() != before {
		if err = loads.Update(ctx, l); err != nil {
			return PlaceBidResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return PlaceBidResult{}, err
	}
	res.Bid = b

	events := []ports.Event{bidEvent(ports.EventBidPlaced, ports.RoleScope(user.RoleAdmin), b, now)}
	if l.Status() != before {
		events = append(events, loadEvents(l, now)...)
	}
	h.notifier.publish(ctx, events...)
	return res, nil
}
