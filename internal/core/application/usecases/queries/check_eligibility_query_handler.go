package queries

import (
	"context"

	"freight/internal/core/domain/services"
	"freight/internal/pkg/errs"
)

// CheckEligibilityQueryHandler runs the eligibility filter for one carrier and
// one load. Admins may ask about any carrier, carriers only about themselves.
type CheckEligibilityQueryHandler struct {
	uowFactory  ReadUoWFactory
	eligibility services.EligibilityFilter
}

func NewCheckEligibilityQueryHandler(
	uowFactory ReadUoWFactory,
	eligibility services.EligibilityFilter,
) CheckEligibilityQueryHandler {
	return CheckEligibilityQueryHandler{uowFactory: uowFactory, eligibility: eligibility}
}

func (h CheckEligibilityQueryHandler) Handle(
	ctx context.Context,
	query CheckEligibilityQuery,
) (services.EligibilityResult, error) {
	if err := query.Validate(); err != nil {
		return services.EligibilityResult{}, err
	}

	actor := query.Actor()
	if !actor.IsAdmin() && !(actor.IsCarrier() && actor.ID.IsEqual(query.CarrierID())) {
		return services.EligibilityResult{}, errs.NewForbiddenError(actor.String(), "check eligibility of another carrier")
	}

	uow := h.uowFactory.Create()

	l, err := uow.LoadRepository().Get(ctx, query.LoadID())
	if err != nil {
		return services.EligibilityResult{}, err
	}
	profile, err := uow.CarrierRepository().GetProfile(ctx, query.CarrierID())
	if err != nil {
		return services.EligibilityResult{}, err
	}

	return h.eligibility.Check(profile, l), nil
}
