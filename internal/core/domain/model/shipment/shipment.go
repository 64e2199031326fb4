// Package shipment models the execution record created for an awarded load.
package shipment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment or RestoreShipment constructor")

type Status string

const (
	PickupScheduled Status = "pickup_scheduled"
	InTransit       Status = "in_transit"
	Delivered       Status = "delivered"
)

func (s Status) Validate() error {
	switch s {
	case PickupScheduled, InTransit, Delivered:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a shipment status", string(s)))
	}
}

type Shipment struct {
	id             kernel.UUID
	loadID         kernel.UUID
	carrierID      kernel.UUID
	truckID        *kernel.UUID
	pickupCode     string
	idempotencyKey string
	status         Status
	createdAt      time.Time
	updatedAt      time.Time
	guard          guard.ConstructorGuard
}

// NewShipment schedules pickup for an awarded load.
func NewShipment(
	id, loadID, carrierID kernel.UUID,
	truckID *kernel.UUID,
	pickupCode, idempotencyKey string,
	now time.Time,
) (*Shipment, error) {
	if err := errors.Join(id.Validate(), loadID.Validate(), carrierID.Validate()); err != nil {
		return nil, err
	}
	if strings.TrimSpace(pickupCode) == "" {
		return nil, errs.NewValueIsRequiredError("pickupCode")
	}
	return &Shipment{
		id:             id,
		loadID:         loadID,
		carrierID:      carrierID,
		truckID:        truckID,
		pickupCode:     pickupCode,
		idempotencyKey: idempotencyKey,
		status:         PickupScheduled,
		createdAt:      now,
		updatedAt:      now,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func RestoreShipment(
	id, loadID, carrierID kernel.UUID,
	truckID *kernel.UUID,
	pickupCode, idempotencyKey string,
	status Status,
	createdAt, updatedAt time.Time,
) (*Shipment, error) {
	s, err := NewShipment(id, loadID, carrierID, truckID, pickupCode, idempotencyKey, createdAt)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}
	s.status = status
	s.updatedAt = updatedAt
	return s, nil
}

func (s *Shipment) Validate() error {
	if s == nil {
		return ErrShipmentIsNotConstructed
	}
	return s.guard.Validate(ErrShipmentIsNotConstructed)
}

func (s *Shipment) ID() kernel.UUID        { return s.id }
func (s *Shipment) LoadID() kernel.UUID    { return s.loadID }
func (s *Shipment) CarrierID() kernel.UUID { return s.carrierID }
func (s *Shipment) TruckID() *kernel.UUID  { return s.truckID }
func (s *Shipment) PickupCode() string     { return s.pickupCode }
func (s *Shipment) IdempotencyKey() string { return s.idempotencyKey }
func (s *Shipment) Status() Status         { return s.status }
func (s *Shipment) CreatedAt() time.Time   { return s.createdAt }
func (s *Shipment) UpdatedAt() time.Time   { return s.updatedAt }

func (s *Shipment) Start(now time.Time) error {
	if s.status != PickupScheduled {
		return errs.NewTransitionDeniedError("shipment", string(s.status), string(InTransit))
	}
	s.status = InTransit
	s.updatedAt = now
	return nil
}

func (s *Shipment) Deliver(now time.Time) error {
	if s.status != InTransit {
		return errs.NewTransitionDeniedError("shipment", string(s.status), string(Delivered))
	}
	s.status = Delivered
	s.updatedAt = now
	return nil
}
