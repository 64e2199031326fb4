package bid

import (
	"errors"
	"strings"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrBidIsNotConstructed = errors.New("Bid must be created via NewBid or RestoreBid constructor")

// AutoRejectReason is recorded on sibling bids closed by an award.
const AutoRejectReason = "auto-rejected: load awarded to another bid"

// Bid is a carrier's offer to haul a load.
//
// A bid moves through its own state machine (see status.go); at most one bid
// per load ever reaches accepted. The counter amount is the admin's reply to
// the carrier's amount and only matters while the bid is countered.
type Bid struct {
	id        kernel.UUID
	loadID    kernel.UUID
	carrierID kernel.UUID
	truckID   *kernel.UUID

	amount         kernel.Money
	counterAmount  *kernel.Money
	acceptedAmount *kernel.Money

	status          Status
	notes           string
	rejectionReason string
	decidedBy       *kernel.UUID
	decidedAt       *time.Time
	expiresAt       *time.Time

	createdAt time.Time
	updatedAt time.Time

	guard guard.ConstructorGuard
}

// NewBid creates a pending bid. expiresAt is optional.
func NewBid(
	id, loadID, carrierID kernel.UUID,
	truckID *kernel.UUID,
	amount kernel.Money,
	notes string,
	expiresAt *time.Time,
	now time.Time,
) (*Bid, error) {
	b := &Bid{
		truckID:   truckID,
		status:    Pending,
		notes:     strings.TrimSpace(notes),
		expiresAt: expiresAt,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		loadID.Validate(),
		carrierID.Validate(),
		b.setAmount(amount),
	); err != nil {
		return nil, err
	}
	b.id, b.loadID, b.carrierID = id, loadID, carrierID

	return b, nil
}

type RestoreParams struct {
	ID              kernel.UUID
	LoadID          kernel.UUID
	CarrierID       kernel.UUID
	TruckID         *kernel.UUID
	Amount          kernel.Money
	CounterAmount   *kernel.Money
	AcceptedAmount  *kernel.Money
	Status          Status
	Notes           string
	RejectionReason string
	DecidedBy       *kernel.UUID
	DecidedAt       *time.Time
	ExpiresAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func RestoreBid(p RestoreParams) (*Bid, error) {
	if err := errors.Join(
		p.ID.Validate(),
		p.LoadID.Validate(),
		p.CarrierID.Validate(),
		p.Amount.Validate(),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}

	return &Bid{
		id:              p.ID,
		loadID:          p.LoadID,
		carrierID:       p.CarrierID,
		truckID:         p.TruckID,
		amount:          p.Amount,
		counterAmount:   p.CounterAmount,
		acceptedAmount:  p.AcceptedAmount,
		status:          p.Status,
		notes:           p.Notes,
		rejectionReason: p.RejectionReason,
		decidedBy:       p.DecidedBy,
		decidedAt:       p.DecidedAt,
		expiresAt:       p.ExpiresAt,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (b *Bid) Validate() error {
	if b == nil {
		return ErrBidIsNotConstructed
	}
	return b.guard.Validate(ErrBidIsNotConstructed)
}

func (b *Bid) ID() kernel.UUID               { return b.id }
func (b *Bid) LoadID() kernel.UUID           { return b.loadID }
func (b *Bid) CarrierID() kernel.UUID        { return b.carrierID }
func (b *Bid) TruckID() *kernel.UUID         { return b.truckID }
func (b *Bid) Amount() kernel.Money          { return b.amount }
func (b *Bid) CounterAmount() *kernel.Money  { return b.counterAmount }
func (b *Bid) AcceptedAmount() *kernel.Money { return b.acceptedAmount }
func (b *Bid) Status() Status                { return b.status }
func (b *Bid) Notes() string                 { return b.notes }
func (b *Bid) RejectionReason() string       { return b.rejectionReason }
func (b *Bid) DecidedBy() *kernel.UUID       { return b.decidedBy }
func (b *Bid) DecidedAt() *time.Time         { return b.decidedAt }
func (b *Bid) ExpiresAt() *time.Time         { return b.expiresAt }
func (b *Bid) CreatedAt() time.Time          { return b.createdAt }
func (b *Bid) UpdatedAt() time.Time          { return b.updatedAt }

func (b *Bid) IsOwnedBy(carrierID kernel.UUID) bool {
	return b.carrierID.IsEqual(carrierID)
}

// IsExpiredAt reports whether an active bid has outlived its expiry time.
func (b *Bid) IsExpiredAt(now time.Time) bool {
	return b.status.IsActive() && b.expiresAt != nil && b.expiresAt.Before(now)
}

// ResolveAcceptedAmount applies the acceptance price precedence: an explicit
// final price wins, then the counter amount if the bid is countered, then the
// carrier's original amount.
func (b *Bid) ResolveAcceptedAmount(finalPrice *kernel.Money) kernel.Money {
	if finalPrice != nil {
		return *finalPrice
	}
	if b.status == Countered && b.counterAmount != nil {
		return *b.counterAmount
	}
	return b.amount
}

// Counter records the admin's counter offer.
func (b *Bid) Counter(amount kernel.Money, actorID kernel.UUID, now time.Time) error {
	if err := ValidateTransition(b.status, Countered); err != nil {
		return err
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("counterAmount", errors.New("must be greater than zero"))
	}

	if err := b.decide(Countered, actorID, now); err != nil {
		return err
	}
	b.counterAmount = &amount
	return nil
}

// Accept closes the bid as the winner at the given amount.
func (b *Bid) Accept(amount kernel.Money, actorID kernel.UUID, now time.Time) error {
	if err := ValidateTransition(b.status, Accepted); err != nil {
		return err
	}
	if err := amount.Validate(); err != nil {
		return err
	}

	if err := b.decide(Accepted, actorID, now); err != nil {
		return err
	}
	b.acceptedAmount = &amount
	return nil
}

func (b *Bid) Reject(reason string, actorID kernel.UUID, now time.Time) error {
	if err := ValidateTransition(b.status, Rejected); err != nil {
		return err
	}

	if err := b.decide(Rejected, actorID, now); err != nil {
		return err
	}
	b.rejectionReason = strings.TrimSpace(reason)
	return nil
}

func (b *Bid) Expire(now time.Time) error {
	if err := ValidateTransition(b.status, Expired); err != nil {
		return err
	}

	b.status = Expired
	b.updatedAt = now
	return nil
}

func (b *Bid) decide(target Status, actorID kernel.UUID, now time.Time) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	b.status = target
	b.decidedBy = &actorID
	b.decidedAt = &now
	b.updatedAt = now
	return nil
}

func (b *Bid) setAmount(amount kernel.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("amount", errors.New("must be greater than zero"))
	}
	b.amount = amount
	return nil
}
