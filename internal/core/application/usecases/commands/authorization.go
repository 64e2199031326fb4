package commands

import (
	"fmt"

	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"
)

type edge struct {
	from, to load.Status
}

var (
	shipperEdges = map[edge]bool{
		{load.Draft, load.Pending}:                   true,
		{load.InvoiceSent, load.InvoiceAcknowledged}: true,
		{load.InvoiceSent, load.InvoiceRejected}:     true,
		{load.Delivered, load.Closed}:                true,
	}
	carrierEdges = map[edge]bool{
		{load.InvoiceAcknowledged, load.InTransit}: true,
		{load.InvoicePaid, load.InTransit}:         true,
		{load.InTransit, load.Delivered}:           true,
	}
)

// authorizeTransition applies the role rules to a requested load edge.
// Admins may request any edge; whether it exists is the state machine's call.
// A shipper may take an unavailable load back only to the status it left.
func authorizeTransition(actor user.Actor, l *load.Load, target load.Status) error {
	action := fmt.Sprintf("move load from %s to %s", l.Status(), target)
	e := edge{l.Status(), target}

	switch actor.Role {
	case user.RoleAdmin:
		return nil

	case user.RoleShipper:
		if !l.ShipperID().IsEqual(actor.ID) {
			return errs.NewForbiddenError(actor.Role.String(), "act on another shipper's load")
		}
		if shipperEdges[e] || target == load.Unavailable {
			return nil
		}
		if l.Status() == load.Unavailable && target == l.RestoreTarget() {
			return nil
		}
		return errs.NewForbiddenError(actor.Role.String(), action)

	case user.RoleCarrier:
		if !l.IsAssignedTo(actor.ID) {
			return errs.NewForbiddenError(actor.Role.String(), "act on a load not assigned to it")
		}
		if carrierEdges[e] {
			return nil
		}
		return errs.NewForbiddenError(actor.Role.String(), action)

	default:
		return errs.NewForbiddenError(string(actor.Role), action)
	}
}

func requireAdmin(actor user.Actor, action string) error {
	if actor.IsAdmin() {
		return nil
	}
	return errs.NewForbiddenError(actor.Role.String(), action)
}

func requireLoadOwnerOrAdmin(actor user.Actor, l *load.Load, action string) error {
	if actor.IsAdmin() || (actor.IsShipper() && l.ShipperID().IsEqual(actor.ID)) {
		return nil
	}
	return errs.NewForbiddenError(actor.Role.String(), action)
}
