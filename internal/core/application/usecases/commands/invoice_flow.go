package commands

import (
	"fmt"
	"time"

	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"
)

// InvoiceAction is a step of the invoice lifecycle. Each action moves the
// invoice and the load's invoice_* status together.
type InvoiceAction string

const (
	InvoiceSend        InvoiceAction = "send"
	InvoiceAcknowledge InvoiceAction = "acknowledge"
	InvoiceReject      InvoiceAction = "reject"
	InvoiceRevise      InvoiceAction = "revise"
	InvoicePay         InvoiceAction = "pay"
)

func (a InvoiceAction) Validate() error {
	switch a {
	case InvoiceSend, InvoiceAcknowledge, InvoiceReject, InvoiceRevise, InvoicePay:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not an invoice action", string(a)))
	}
}

func (a InvoiceAction) target() load.Status {
	switch a {
	case InvoiceSend:
		return load.InvoiceSent
	case InvoiceAcknowledge:
		return load.InvoiceAcknowledged
	case InvoiceReject:
		return load.InvoiceRejected
	case InvoiceRevise:
		return load.InvoiceCreated
	default:
		return load.InvoicePaid
	}
}

// authorize: the admin sends, revises and records payment; the owning shipper
// acknowledges or disputes.
func (a InvoiceAction) authorize(actor user.Actor, l *load.Load) error {
	if actor.IsAdmin() {
		return nil
	}
	if (a == InvoiceAcknowledge || a == InvoiceReject) && actor.IsShipper() && l.ShipperID().IsEqual(actor.ID) {
		return nil
	}
	return errs.NewForbiddenError(actor.Role.String(), string(a)+" an invoice")
}

// invoiceActionForEdge maps a load edge that belongs to the invoice lifecycle
// to its action. awarded → invoice_created is not mapped: it needs no invoice change.
func invoiceActionForEdge(from, to load.Status) (InvoiceAction, bool) {
	switch {
	case to == load.InvoiceSent:
		return InvoiceSend, true
	case to == load.InvoiceAcknowledged:
		return InvoiceAcknowledge, true
	case to == load.InvoiceRejected:
		return InvoiceReject, true
	case to == load.InvoicePaid:
		return InvoicePay, true
	case from == load.InvoiceRejected && to == load.InvoiceCreated:
		return InvoiceRevise, true
	default:
		return "", false
	}
}

// applyInvoiceAction checks the load edge first, then moves the invoice, then
// the load. A denied step leaves both aggregates as they were.
func applyInvoiceAction(
	l *load.Load,
	inv *invoice.Invoice,
	action InvoiceAction,
	actorID kernel.UUID,
	note string,
	revised *kernel.Money,
	now time.Time,
) error {
	// A load that already moved on to execution can still have its invoice paid.
	if action == InvoicePay && (l.Status() == load.InTransit || l.Status() == load.Delivered || l.Status() == load.Closed) {
		return inv.Pay(now)
	}

	from := l.Status()
	if action == InvoiceSend && from == load.Awarded {
		from = load.InvoiceCreated
	}
	if err := load.ValidateTransition(from, action.target()); err != nil {
		return err
	}

	var err error
	switch action {
	case InvoiceSend:
		if inv.Status() == invoice.Rejected {
			if err = inv.Revise(inv.Total(), now); err != nil {
				return err
			}
		}
		err = inv.Send(now)
	case InvoiceAcknowledge:
		err = inv.Acknowledge(now)
	case InvoiceReject:
		err = inv.Reject(note, now)
	case InvoiceRevise:
		total := inv.Total()
		if revised != nil {
			total = *revised
		}
		err = inv.Revise(total, now)
	case InvoicePay:
		err = inv.Pay(now)
	}
	if err != nil {
		return err
	}

	if l.Status() == load.Awarded {
		if err = l.Transition(load.InvoiceCreated, actorID, "invoice drafted", now); err != nil {
			return err
		}
	}
	if note == "" {
		note = "invoice " + string(action)
	}
	return l.Transition(action.target(), actorID, note, now)
}
