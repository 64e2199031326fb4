package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/shipment"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.uber.org/zap"
)

// ShipmentPolicy decides when the shipment of an awarded load is created.
type ShipmentPolicy string

const (
	// ShipmentEager creates the shipment right after the award.
	ShipmentEager ShipmentPolicy = "eager"
	// ShipmentDeferred waits until the shipper acknowledges the invoice.
	ShipmentDeferred ShipmentPolicy = "deferred"
)

func (p ShipmentPolicy) Validate() error {
	switch p {
	case ShipmentEager, ShipmentDeferred:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("shipmentPolicy", fmt.Errorf("%q is not a shipment policy", string(p)))
	}
}

// AwardOptions are the configurable points of the award workflow.
type AwardOptions struct {
	ShipmentPolicy ShipmentPolicy
	// InvoiceOnAward moves an awarded load straight on to invoice_created.
	InvoiceOnAward bool
}

func DefaultAwardOptions() AwardOptions {
	return AwardOptions{ShipmentPolicy: ShipmentEager}
}

// AwardKey is the default idempotency key for the artifacts of a bid award.
func AwardKey(bidID kernel.UUID) string {
	return "award:" + bidID.String()
}

// AwardArtifacts creates the invoice and shipment of an awarded load. Both
// operations look up by load first, so running them again (a retried request,
// the repair job) never creates a second artifact.
type AwardArtifacts struct {
	codes  services.CodeGenerator
	logger *zap.Logger
}

func NewAwardArtifacts(codes services.CodeGenerator, logger *zap.Logger) AwardArtifacts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return AwardArtifacts{codes: codes, logger: logger.With(zap.String("component", "award_artifacts"))}
}

// EnsureInvoice returns the load's invoice, creating it if needed. The total
// is the shipper-facing price; the carrier amount is the accepted bid amount.
func (a AwardArtifacts) EnsureInvoice(
	ctx context.Context,
	repo ports.InvoiceRepository,
	l *load.Load,
	key string,
	now time.Time,
) (*invoice.Invoice, error) {
	existing, err := repo.GetByLoad(ctx, l.ID())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	carrierID, carrierAmount := l.AssignedCarrierID(), l.FinalPrice()
	if carrierID == nil || carrierAmount == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("load", errors.New("load has no award to invoice"))
	}

	total, ok := l.ShipperPrice()
	if !ok {
		total = *carrierAmount
		a.logger.Warn("load has no shipper price, invoicing the carrier amount",
			zap.String("load_id", l.ID().String()))
	}

	number, err := a.codes.InvoiceNumber(ctx, now, repo.NumberExists)
	if err != nil {
		return nil, err
	}

	inv, err := invoice.NewInvoice(kernel.NewUUID(), l.ID(), l.ShipperID(), *carrierID, number, key, total, *carrierAmount, now)
	if err != nil {
		return nil, err
	}

	if err = repo.Add(ctx, inv); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return repo.GetByLoad(ctx, l.ID())
		}
		return nil, err
	}
	return inv, nil
}

// EnsureShipment returns the load's shipment, creating it in pickup_scheduled
// if needed. The pickup code is the one minted at award.
func (a AwardArtifacts) EnsureShipment(
	ctx context.Context,
	repo ports.ShipmentRepository,
	l *load.Load,
	key string,
	now time.Time,
) (*shipment.Shipment, error) {
	existing, err := repo.GetByLoad(ctx, l.ID())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	carrierID := l.AssignedCarrierID()
	if carrierID == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("load", errors.New("load has no assigned carrier"))
	}

	s, err := shipment.NewShipment(kernel.NewUUID(), l.ID(), *carrierID, l.AssignedTruckID(), l.PickupID(), key, now)
	if err != nil {
		return nil, err
	}

	if err = repo.Add(ctx, s); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return repo.GetByLoad(ctx, l.ID())
		}
		return nil, err
	}
	return s, nil
}

type artifactOutcome struct {
	invoiceID  *kernel.UUID
	shipmentID *kernel.UUID
	warnings   []*errs.DependencyFailureError
}

// ensureAll runs the best-effort artifact steps outside the award transaction.
// Failures are logged and returned as warnings.
func (a AwardArtifacts) ensureAll(
	ctx context.Context,
	uow UoW,
	l *load.Load,
	key string,
	policy ShipmentPolicy,
	now time.Time,
) artifactOutcome {
	var out artifactOutcome

	inv, err := a.EnsureInvoice(ctx, uow.InvoiceRepository(), l, key, now)
	if err != nil {
		a.logger.Warn("invoice creation failed", zap.String("load_id", l.ID().String()), zap.Error(err))
		out.warnings = append(out.warnings, errs.NewDependencyFailureError("invoice", err))
	} else {
		id := inv.ID()
		out.invoiceID = &id
	}

	if policy == ShipmentDeferred {
		return out
	}

	s, err := a.EnsureShipment(ctx, uow.ShipmentRepository(), l, key, now)
	if err != nil {
		a.logger.Warn("shipment creation failed", zap.String("load_id", l.ID().String()), zap.Error(err))
		out.warnings = append(out.warnings, errs.NewDependencyFailureError("shipment", err))
	} else {
		id := s.ID()
		out.shipmentID = &id
	}
	return out
}

// ensureDeferredShipment creates the shipment the deferred policy held back,
// once the load reaches invoice_acknowledged.
func (a AwardArtifacts) ensureDeferredShipment(
	ctx context.Context,
	uow UoW,
	l *load.Load,
	policy ShipmentPolicy,
	now time.Time,
) artifactOutcome {
	if policy != ShipmentDeferred || l.Status() != load.InvoiceAcknowledged || l.AwardedBidID() == nil {
		return artifactOutcome{}
	}
	return a.ensureAll(ctx, uow, l, AwardKey(*l.AwardedBidID()), ShipmentEager, now)
}
