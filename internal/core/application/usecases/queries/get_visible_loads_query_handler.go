package queries

import (
	"context"
	"errors"

	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/domain/services"
	"freight/internal/pkg/errs"
)

// GetVisibleLoadsQueryHandler reads loads through the repositories and hands
// them to the visibility projector.
//
// Shippers only ever load their own rows. Admins and carriers read every load;
// for carriers the projector drops what the eligibility filter rejects.
type GetVisibleLoadsQueryHandler struct {
	uowFactory ReadUoWFactory
	projector  services.VisibilityProjector
}

func NewGetVisibleLoadsQueryHandler(
	uowFactory ReadUoWFactory,
	projector services.VisibilityProjector,
) GetVisibleLoadsQueryHandler {
	return GetVisibleLoadsQueryHandler{uowFactory: uowFactory, projector: projector}
}

// Handle returns the projected loads sorted newest first. A carrier without a
// profile is not an error: it still sees the loads awarded to it.
func (h GetVisibleLoadsQueryHandler) Handle(
	ctx context.Context,
	query GetVisibleLoadsQuery,
) ([]services.LoadView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	actor := query.Actor()

	var (
		loads   []*load.Load
		profile *carrier.Profile
		err     error
	)
	switch actor.Role {
	case user.RoleShipper:
		loads, err = uow.LoadRepository().ListByShipper(ctx, actor.ID)
	case user.RoleCarrier:
		profile, err = uow.CarrierRepository().GetProfile(ctx, actor.ID)
		if errors.Is(err, errs.ErrObjectNotFound) {
			profile, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		loads, err = uow.LoadRepository().List(ctx)
	default:
		loads, err = uow.LoadRepository().List(ctx)
	}
	if err != nil {
		return nil, err
	}

	return h.projector.Project(actor, loads, profile), nil
}
