package services

import (
	"slices"
	"time"

	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"
)

// LoadView is a load as one actor is allowed to see it. Redacted prices are nil.
type LoadView struct {
	ID                kernel.UUID        `json:"id"`
	ShipperID         kernel.UUID        `json:"shipperId"`
	OriginZone        string             `json:"originZone"`
	DestinationZone   string             `json:"destinationZone"`
	TruckType         string             `json:"truckType,omitempty"`
	Status            load.Status        `json:"status"`
	PostingMode       load.PostingMode   `json:"postingMode"`
	AllowCounterBids  bool               `json:"allowCounterBids"`
	SuggestedPrice    *kernel.Money      `json:"suggestedPrice,omitempty"`
	AdminFinalPrice   *kernel.Money      `json:"adminFinalPrice,omitempty"`
	FinalPrice        *kernel.Money      `json:"finalPrice,omitempty"`
	InvitedCarrierIDs []kernel.UUID      `json:"invitedCarrierIds,omitempty"`
	AssignedCarrierID *kernel.UUID       `json:"assignedCarrierId,omitempty"`
	PickupID          string             `json:"pickupId,omitempty"`
	Eligibility       *EligibilityResult `json:"eligibility,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// VisibilityProjector decides which loads an actor sees and which fields of
// each load survive.
//
//   - admin: every load, unredacted
//   - shipper: own loads, carrier payout (finalPrice) hidden
//   - carrier: loads it is eligible for plus its own in-flight loads, with the
//     shipper-facing price and the invite list hidden
type VisibilityProjector struct {
	eligibility EligibilityFilter
}

func NewVisibilityProjector(eligibility EligibilityFilter) VisibilityProjector {
	return VisibilityProjector{eligibility: eligibility}
}

// Project filters and redacts loads for actor. profile is only consulted for
// carriers; a carrier without a profile sees only loads assigned to it.
// The result is sorted newest first.
func (p VisibilityProjector) Project(actor user.Actor, loads []*load.Load, profile *carrier.Profile) []LoadView {
	views := make([]LoadView, 0, len(loads))
	for _, l := range loads {
		view, ok := p.ProjectOne(actor, l, profile)
		if ok {
			views = append(views, view)
		}
	}

	slices.SortStableFunc(views, func(a, b LoadView) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return views
}

// ProjectOne returns the view of a single load and whether actor may see it at all.
func (p VisibilityProjector) ProjectOne(actor user.Actor, l *load.Load, profile *carrier.Profile) (LoadView, bool) {
	view := newLoadView(l)

	switch actor.Role {
	case user.RoleAdmin:
		return view, true

	case user.RoleShipper:
		if !l.ShipperID().IsEqual(actor.ID) {
			return LoadView{}, false
		}
		view.FinalPrice = nil
		return view, true

	case user.RoleCarrier:
		if profile == nil {
			if !l.IsAssignedTo(actor.ID) || !l.Status().IsExecutionPhase() {
				return LoadView{}, false
			}
		} else {
			res := p.eligibility.Check(profile, l)
			if !res.Eligible {
				return LoadView{}, false
			}
			view.Eligibility = &res
		}
		view.AdminFinalPrice = nil
		view.InvitedCarrierIDs = nil
		return view, true

	default:
		return LoadView{}, false
	}
}

func newLoadView(l *load.Load) LoadView {
	lane := l.Lane()
	return LoadView{
		ID:                l.ID(),
		ShipperID:         l.ShipperID(),
		OriginZone:        lane.OriginZone,
		DestinationZone:   lane.DestinationZone,
		TruckType:         lane.TruckType,
		Status:            l.Status(),
		PostingMode:       l.PostingMode(),
		AllowCounterBids:  l.AllowCounterBids(),
		SuggestedPrice:    l.SuggestedPrice(),
		AdminFinalPrice:   l.AdminFinalPrice(),
		FinalPrice:        l.FinalPrice(),
		InvitedCarrierIDs: l.InvitedCarrierIDs(),
		AssignedCarrierID: l.AssignedCarrierID(),
		PickupID:          l.PickupID(),
		CreatedAt:         l.CreatedAt(),
		UpdatedAt:         l.UpdatedAt(),
	}
}
