package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/services"
	"freight/internal/pkg/errs"

	"go.uber.org/zap"
)

// RepairOutcome reports what a repair pass found or created for one load.
type RepairOutcome struct {
	LoadID     kernel.UUID
	InvoiceID  *kernel.UUID
	ShipmentID *kernel.UUID
	Warnings   []*errs.DependencyFailureError
}

// RepairAwardArtifactsCommandHandler is the recovery path for the best-effort
// steps of an award. It relies on the lookup-first contract of AwardArtifacts,
// so repairing a healthy load is a no-op.
type RepairAwardArtifactsCommandHandler struct {
	uowFactory UoWFactory
	artifacts  AwardArtifacts
	policy     ShipmentPolicy
	logger     *zap.Logger
}

func NewRepairAwardArtifactsCommandHandler(
	uowFactory UoWFactory,
	codes services.CodeGenerator,
	policy ShipmentPolicy,
	logger *zap.Logger,
) RepairAwardArtifactsCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return RepairAwardArtifactsCommandHandler{
		uowFactory: uowFactory,
		artifacts:  NewAwardArtifacts(codes, logger),
		policy:     policy,
		logger:     logger.With(zap.String("component", "award_repair")),
	}
}

func (h RepairAwardArtifactsCommandHandler) Handle(ctx context.Context, command RepairAwardArtifactsCommand) ([]RepairOutcome, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	if actor := command.Actor(); actor != nil {
		if err := requireAdmin(*actor, "repair award artifacts"); err != nil {
			return nil, err
		}
	}

	ctx, span := tracer.Start(ctx, "RepairAwardArtifacts")
	defer span.End()

	uow := h.uowFactory.Create()
	loads := uow.LoadRepository()

	var targets []*load.Load
	if id := command.LoadID(); id != nil {
		l, err := loads.Get(ctx, *id)
		if err != nil {
			return nil, err
		}
		if !l.Status().IsExecutionPhase() || l.AwardedBidID() == nil {
			return nil, errs.NewConflictError("load", "load has not been awarded")
		}
		targets = append(targets, l)
	} else {
		found, err := loads.ListAwardedMissingArtifacts(ctx, command.Limit())
		if err != nil {
			return nil, err
		}
		targets = found
	}

	now := time.Now().UTC()
	outcomes := make([]RepairOutcome, 0, len(targets))
	for _, l := range targets {
		policy := h.policy
		if policy == ShipmentDeferred && shipmentDue(l.Status()) {
			policy = ShipmentEager
		}

		out := h.artifacts.ensureAll(ctx, uow, l, AwardKey(*l.AwardedBidID()), policy, now)
		outcomes = append(outcomes, RepairOutcome{
			LoadID:     l.ID(),
			InvoiceID:  out.invoiceID,
			ShipmentID: out.shipmentID,
			Warnings:   out.warnings,
		})
	}

	if len(outcomes) > 0 {
		h.logger.Info("award artifacts repaired", zap.Int("loads", len(outcomes)))
	}
	return outcomes, nil
}

// shipmentDue reports whether a deferred shipment should exist by now: the
// invoice has been acknowledged or the load moved on past it.
func shipmentDue(s load.Status) bool {
	switch s {
	case load.InvoiceAcknowledged, load.InvoicePaid, load.InTransit, load.Delivered, load.Closed:
		return true
	default:
		return false
	}
}
