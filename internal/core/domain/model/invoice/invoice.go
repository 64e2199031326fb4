// Package invoice models the shipper invoice raised when a load is awarded and
// the dispute loop a shipper can open by rejecting it.
package invoice

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrInvoiceIsNotConstructed = errors.New("Invoice must be created via NewInvoice or RestoreInvoice constructor")

type Status string

const (
	Draft        Status = "draft"
	Sent         Status = "sent"
	Acknowledged Status = "acknowledged"
	Paid         Status = "paid"
	Rejected     Status = "rejected"
)

var transitions = map[Status][]Status{
	Draft:        {Sent},
	Sent:         {Acknowledged, Rejected},
	Rejected:     {Draft},
	Acknowledged: {Paid},
	Paid:         {},
}

func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not an invoice status", string(s)))
	}
	return nil
}

func ValidateTransition(from, to Status) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !slices.Contains(transitions[from], to) {
		return errs.NewTransitionDeniedError("invoice", string(from), string(to))
	}
	return nil
}

// Invoice bills the shipper the shipper-facing price of an awarded load.
// CarrierAmount records what the carrier is owed; the difference is the
// platform margin.
type Invoice struct {
	id              kernel.UUID
	loadID          kernel.UUID
	shipperID       kernel.UUID
	carrierID       kernel.UUID
	number          string
	idempotencyKey  string
	total           kernel.Money
	carrierAmount   kernel.Money
	status          Status
	rejectionReason string
	createdAt       time.Time
	updatedAt       time.Time
	guard           guard.ConstructorGuard
}

func NewInvoice(
	id, loadID, shipperID, carrierID kernel.UUID,
	number, idempotencyKey string,
	total, carrierAmount kernel.Money,
	now time.Time,
) (*Invoice, error) {
	if err := errors.Join(
		id.Validate(),
		loadID.Validate(),
		shipperID.Validate(),
		carrierID.Validate(),
		total.Validate(),
		carrierAmount.Validate(),
	); err != nil {
		return nil, err
	}
	if strings.TrimSpace(number) == "" {
		return nil, errs.NewValueIsRequiredError("number")
	}
	return &Invoice{
		id:             id,
		loadID:         loadID,
		shipperID:      shipperID,
		carrierID:      carrierID,
		number:         number,
		idempotencyKey: idempotencyKey,
		total:          total,
		carrierAmount:  carrierAmount,
		status:         Draft,
		createdAt:      now,
		updatedAt:      now,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

type RestoreParams struct {
	ID              kernel.UUID
	LoadID          kernel.UUID
	ShipperID       kernel.UUID
	CarrierID       kernel.UUID
	Number          string
	IdempotencyKey  string
	Total           kernel.Money
	CarrierAmount   kernel.Money
	Status          Status
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func RestoreInvoice(p RestoreParams) (*Invoice, error) {
	inv, err := NewInvoice(p.ID, p.LoadID, p.ShipperID, p.CarrierID, p.Number, p.IdempotencyKey, p.Total, p.CarrierAmount, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err = p.Status.Validate(); err != nil {
		return nil, err
	}
	inv.status = p.Status
	inv.rejectionReason = p.RejectionReason
	inv.updatedAt = p.UpdatedAt
	return inv, nil
}

func (i *Invoice) Validate() error {
	if i == nil {
		return ErrInvoiceIsNotConstructed
	}
	return i.guard.Validate(ErrInvoiceIsNotConstructed)
}

func (i *Invoice) ID() kernel.UUID             { return i.id }
func (i *Invoice) LoadID() kernel.UUID         { return i.loadID }
func (i *Invoice) ShipperID() kernel.UUID      { return i.shipperID }
func (i *Invoice) CarrierID() kernel.UUID      { return i.carrierID }
func (i *Invoice) Number() string              { return i.number }
func (i *Invoice) IdempotencyKey() string      { return i.idempotencyKey }
func (i *Invoice) Total() kernel.Money         { return i.total }
func (i *Invoice) CarrierAmount() kernel.Money { return i.carrierAmount }
func (i *Invoice) Status() Status              { return i.status }
func (i *Invoice) RejectionReason() string     { return i.rejectionReason }
func (i *Invoice) CreatedAt() time.Time        { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time        { return i.updatedAt }

func (i *Invoice) Send(now time.Time) error {
	return i.move(Sent, now)
}

func (i *Invoice) Acknowledge(now time.Time) error {
	return i.move(Acknowledged, now)
}

func (i *Invoice) Pay(now time.Time) error {
	return i.move(Paid, now)
}

// Reject records a shipper dispute.
func (i *Invoice) Reject(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if err := i.move(Rejected, now); err != nil {
		return err
	}
	i.rejectionReason = reason
	return nil
}

// Revise reopens a rejected invoice as a draft with a new total.
func (i *Invoice) Revise(total kernel.Money, now time.Time) error {
	if err := total.Validate(); err != nil {
		return err
	}
	if err := i.move(Draft, now); err != nil {
		return err
	}
	i.total = total
	i.rejectionReason = ""
	return nil
}

func (i *Invoice) move(target Status, now time.Time) error {
	if err := ValidateTransition(i.status, target); err != nil {
		return err
	}
	i.status = target
	i.updatedAt = now
	return nil
}
