package load

import (
	"fmt"
	"slices"

	"freight/internal/pkg/errs"
)

// Status is a lifecycle state of a load.
//
// Main chain:
//
//	draft → pending → priced → posted_to_carriers → open_for_bid ⇄ counter_received
//	      → awarded → invoice_created → invoice_sent → invoice_acknowledged
//	      → invoice_paid → in_transit → delivered → closed
//
// Side branches: invoice_sent → invoice_rejected → invoice_created | invoice_sent
// (pricing dispute), and the out-of-band unavailable state a shipper may toggle
// before award.
type Status string

const (
	Draft               Status = "draft"
	Pending             Status = "pending"
	Priced              Status = "priced"
	PostedToCarriers    Status = "posted_to_carriers"
	OpenForBid          Status = "open_for_bid"
	CounterReceived     Status = "counter_received"
	Awarded             Status = "awarded"
	InvoiceCreated      Status = "invoice_created"
	InvoiceSent         Status = "invoice_sent"
	InvoiceRejected     Status = "invoice_rejected"
	InvoiceAcknowledged Status = "invoice_acknowledged"
	InvoicePaid         Status = "invoice_paid"
	InTransit           Status = "in_transit"
	Delivered           Status = "delivered"
	Closed              Status = "closed"
	Unavailable         Status = "unavailable"
)

// transitions is the single source of truth for legal load edges.
var transitions = map[Status][]Status{
	Draft:               {Pending, Unavailable},
	Pending:             {Priced, Unavailable},
	Priced:              {PostedToCarriers, Pending, Unavailable},
	PostedToCarriers:    {OpenForBid, Awarded, Unavailable},
	OpenForBid:          {CounterReceived, Awarded, Unavailable},
	CounterReceived:     {OpenForBid, Awarded},
	Awarded:             {InvoiceCreated},
	InvoiceCreated:      {InvoiceSent},
	InvoiceSent:         {InvoiceAcknowledged, InvoiceRejected},
	InvoiceRejected:     {InvoiceCreated, InvoiceSent},
	InvoiceAcknowledged: {InvoicePaid, InTransit},
	InvoicePaid:         {InTransit},
	InTransit:           {Delivered},
	Delivered:           {Closed},
	Closed:              {},
	Unavailable:         {Draft, Pending, Priced, PostedToCarriers, OpenForBid},
}

// AllStatuses lists every status in lifecycle order, unavailable last.
func AllStatuses() []Status {
	return []Status{
		Draft, Pending, Priced, PostedToCarriers, OpenForBid, CounterReceived, Awarded,
		InvoiceCreated, InvoiceSent, InvoiceRejected, InvoiceAcknowledged, InvoicePaid,
		InTransit, Delivered, Closed, Unavailable,
	}
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a load status", string(s)))
	}
	return nil
}

// AllowedTransitions returns the statuses reachable from s in one step.
func (s Status) AllowedTransitions() []Status {
	return slices.Clone(transitions[s])
}

func (s Status) CanTransitionTo(target Status) bool {
	return slices.Contains(transitions[s], target)
}

// ValidateTransition is the pure gate every load status change passes through.
func ValidateTransition(from, to Status) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !from.CanTransitionTo(to) {
		return errs.NewTransitionDeniedError("load", from.String(), to.String())
	}
	return nil
}

// IsBiddable reports whether carriers may place or negotiate bids.
func (s Status) IsBiddable() bool {
	return s == PostedToCarriers || s == OpenForBid || s == CounterReceived
}

// IsExecutionPhase reports whether the load has been awarded (awarded or any later state).
func (s Status) IsExecutionPhase() bool {
	switch s {
	case Awarded, InvoiceCreated, InvoiceSent, InvoiceRejected, InvoiceAcknowledged,
		InvoicePaid, InTransit, Delivered, Closed:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.Validate() == nil
}
