package queries

import (
	"context"

	"freight/internal/core/domain/services"
	"freight/internal/pkg/errs"
)

type CheckComplianceQueryHandler struct {
	uowFactory ReadUoWFactory
	compliance services.ComplianceChecker
}

func NewCheckComplianceQueryHandler(
	uowFactory ReadUoWFactory,
	compliance services.ComplianceChecker,
) CheckComplianceQueryHandler {
	return CheckComplianceQueryHandler{uowFactory: uowFactory, compliance: compliance}
}

// Handle reads the carrier's documents and checks them. A carrier with no
// documents at all gets a result listing every required type as missing.
func (h CheckComplianceQueryHandler) Handle(
	ctx context.Context,
	query CheckComplianceQuery,
) (services.ComplianceResult, error) {
	if err := query.Validate(); err != nil {
		return services.ComplianceResult{}, err
	}

	actor := query.Actor()
	if !actor.IsAdmin() && !(actor.IsCarrier() && actor.ID.IsEqual(query.CarrierID())) {
		return services.ComplianceResult{}, errs.NewForbiddenError(actor.String(), "check compliance of another carrier")
	}

	docs, err := h.uowFactory.Create().CarrierRepository().ListDocuments(ctx, query.CarrierID())
	if err != nil {
		return services.ComplianceResult{}, err
	}
	return h.compliance.Check(docs, query.At()), nil
}
