package load

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

var ErrLoadIsNotConstructed = errors.New("Load must be created via NewLoad or RestoreLoad constructor")

// Lane describes where a load moves and what equipment it needs. The zones and
// truck type feed the soft eligibility checks.
type Lane struct {
	OriginZone      string
	DestinationZone string
	TruckType       string
}

// Load is the aggregate root of the brokerage workflow. It owns the lifecycle
// status, the pricing fields, the posting configuration and the award outcome.
//
// Invariants:
//   - status only changes along the edges in transitions
//   - every status change appends exactly one HistoryRecord
//   - assignedCarrierID is set at most once, at or before award, and never changes afterwards
//   - pickupID is set exactly once, at award
type Load struct {
	id        kernel.UUID
	shipperID kernel.UUID
	lane      Lane

	status          Status
	previousStatus  *Status
	statusChangedBy *kernel.UUID
	statusChangedAt time.Time

	suggestedPrice  *kernel.Money
	adminFinalPrice *kernel.Money
	finalPrice      *kernel.Money

	postingMode       PostingMode
	invitedCarrierIDs []kernel.UUID
	allowCounterBids  bool
	kycVerified       bool

	assignedCarrierID *kernel.UUID
	assignedTruckID   *kernel.UUID
	awardedBidID      *kernel.UUID
	pickupID          string

	createdAt time.Time
	updatedAt time.Time

	pendingHistory []HistoryRecord

	guard guard.ConstructorGuard
}

// NewLoad creates a load in draft status with open posting and counter bids allowed.
func NewLoad(id, shipperID kernel.UUID, lane Lane, suggestedPrice *kernel.Money, now time.Time) (*Load, error) {
	l := &Load{
		status:           Draft,
		postingMode:      PostingOpen,
		allowCounterBids: true,
		createdAt:        now,
		updatedAt:        now,
		statusChangedAt:  now,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		l.setID(id),
		l.setShipperID(shipperID),
		l.setLane(lane),
		l.setSuggestedPrice(suggestedPrice),
	); err != nil {
		return nil, err
	}

	return l, nil
}

// RestoreParams carries the persisted state of a load.
type RestoreParams struct {
	ID                kernel.UUID
	ShipperID         kernel.UUID
	Lane              Lane
	Status            Status
	PreviousStatus    *Status
	StatusChangedBy   *kernel.UUID
	StatusChangedAt   time.Time
	SuggestedPrice    *kernel.Money
	AdminFinalPrice   *kernel.Money
	FinalPrice        *kernel.Money
	PostingMode       PostingMode
	InvitedCarrierIDs []kernel.UUID
	AllowCounterBids  bool
	KYCVerified       bool
	AssignedCarrierID *kernel.UUID
	AssignedTruckID   *kernel.UUID
	AwardedBidID      *kernel.UUID
	PickupID          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RestoreLoad rebuilds a load from storage without replaying transitions.
func RestoreLoad(p RestoreParams) (*Load, error) {
	l := &Load{
		lane:              p.Lane,
		status:            p.Status,
		previousStatus:    p.PreviousStatus,
		statusChangedBy:   p.StatusChangedBy,
		statusChangedAt:   p.StatusChangedAt,
		suggestedPrice:    p.SuggestedPrice,
		adminFinalPrice:   p.AdminFinalPrice,
		finalPrice:        p.FinalPrice,
		postingMode:       p.PostingMode,
		invitedCarrierIDs: slices.Clone(p.InvitedCarrierIDs),
		allowCounterBids:  p.AllowCounterBids,
		kycVerified:       p.KYCVerified,
		assignedCarrierID: p.AssignedCarrierID,
		assignedTruckID:   p.AssignedTruckID,
		awardedBidID:      p.AwardedBidID,
		pickupID:          p.PickupID,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		l.setID(p.ID),
		l.setShipperID(p.ShipperID),
		p.Status.Validate(),
		p.PostingMode.Validate(),
	); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Load) Validate() error {
	if l == nil {
		return ErrLoadIsNotConstructed
	}
	return l.guard.Validate(ErrLoadIsNotConstructed)
}

func (l *Load) ID() kernel.UUID                  { return l.id }
func (l *Load) ShipperID() kernel.UUID           { return l.shipperID }
func (l *Load) Lane() Lane                       { return l.lane }
func (l *Load) Status() Status                   { return l.status }
func (l *Load) PreviousStatus() *Status          { return l.previousStatus }
func (l *Load) StatusChangedBy() *kernel.UUID    { return l.statusChangedBy }
func (l *Load) StatusChangedAt() time.Time       { return l.statusChangedAt }
func (l *Load) SuggestedPrice() *kernel.Money    { return l.suggestedPrice }
func (l *Load) AdminFinalPrice() *kernel.Money   { return l.adminFinalPrice }
func (l *Load) FinalPrice() *kernel.Money        { return l.finalPrice }
func (l *Load) PostingMode() PostingMode         { return l.postingMode }
func (l *Load) InvitedCarrierIDs() []kernel.UUID { return slices.Clone(l.invitedCarrierIDs) }
func (l *Load) AllowCounterBids() bool           { return l.allowCounterBids }
func (l *Load) KYCVerified() bool                { return l.kycVerified }
func (l *Load) AssignedCarrierID() *kernel.UUID  { return l.assignedCarrierID }
func (l *Load) AssignedTruckID() *kernel.UUID    { return l.assignedTruckID }
func (l *Load) AwardedBidID() *kernel.UUID       { return l.awardedBidID }
func (l *Load) PickupID() string                 { return l.pickupID }
func (l *Load) CreatedAt() time.Time             { return l.createdAt }
func (l *Load) UpdatedAt() time.Time             { return l.updatedAt }

// IsAssignedTo reports whether carrierID is the load's assigned carrier.
func (l *Load) IsAssignedTo(carrierID kernel.UUID) bool {
	return l.assignedCarrierID != nil && l.assignedCarrierID.IsEqual(carrierID)
}

// IsAwardedTo reports whether the load was awarded to bidID.
func (l *Load) IsAwardedTo(bidID kernel.UUID) bool {
	return l.awardedBidID != nil && l.awardedBidID.IsEqual(bidID)
}

func (l *Load) IsInvited(carrierID kernel.UUID) bool {
	return slices.ContainsFunc(l.invitedCarrierIDs, carrierID.IsEqual)
}

// ShipperPrice is the shipper-facing price: the admin final price, falling back
// to the suggested price. The boolean is false if neither was ever set.
func (l *Load) ShipperPrice() (kernel.Money, bool) {
	if l.adminFinalPrice != nil {
		return *l.adminFinalPrice, true
	}
	if l.suggestedPrice != nil {
		return *l.suggestedPrice, true
	}
	return kernel.Money{}, false
}

// Transition moves the load to target if the edge exists and records the change.
//
// On a denied edge the load is left untouched and a *errs.TransitionDeniedError
// is returned.
func (l *Load) Transition(target Status, actorID kernel.UUID, note string, now time.Time) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	if err := ValidateTransition(l.status, target); err != nil {
		return err
	}
	if l.status == Unavailable && target != l.RestoreTarget() {
		return errs.NewTransitionDeniedErrorWithCause("load", l.status.String(), target.String(),
			fmt.Errorf("an unavailable load returns to %s", l.RestoreTarget()))
	}

	from := l.status
	l.previousStatus = &from
	l.status = target
	l.statusChangedBy = &actorID
	l.statusChangedAt = now
	l.updatedAt = now
	l.pendingHistory = append(l.pendingHistory, newHistoryRecord(l.id, from, target, actorID, note, now))
	return nil
}

// Price sets the shipper-facing admin price. A pending load moves to priced; a
// load that is already priced is re-priced in place.
func (l *Load) Price(adminFinalPrice kernel.Money, actorID kernel.UUID, now time.Time) error {
	if err := adminFinalPrice.Validate(); err != nil {
		return err
	}
	if !adminFinalPrice.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("adminFinalPrice", errors.New("must be greater than zero"))
	}

	switch l.status {
	case Pending:
		if err := l.Transition(Priced, actorID, "priced at "+adminFinalPrice.String(), now); err != nil {
			return err
		}
	case Priced:
		l.updatedAt = now
	default:
		return errs.NewTransitionDeniedError("load", l.status.String(), Priced.String())
	}

	l.adminFinalPrice = &adminFinalPrice
	return nil
}

// PostingOptions configures who may bid on a posted load.
type PostingOptions struct {
	Mode              PostingMode
	InvitedCarrierIDs []kernel.UUID
	AssignedCarrierID *kernel.UUID
	AllowCounterBids  bool
	KYCVerified       bool
}

// Post publishes a priced load to carriers.
func (l *Load) Post(opts PostingOptions, actorID kernel.UUID, now time.Time) error {
	if err := opts.Mode.Validate(); err != nil {
		return err
	}
	if l.adminFinalPrice == nil || !l.adminFinalPrice.IsPositive() {
		return errs.NewValueIsRequiredErrorWithCause("adminFinalPrice", errors.New("load must be priced before posting"))
	}

	switch opts.Mode {
	case PostingInvite:
		if len(opts.InvitedCarrierIDs) == 0 {
			return errs.NewValueIsRequiredErrorWithCause("invitedCarrierIds", errors.New("invite mode needs at least one carrier"))
		}
	case PostingAssign:
		if opts.AssignedCarrierID == nil || opts.AssignedCarrierID.IsZero() {
			return errs.NewValueIsRequiredErrorWithCause("assignedCarrierId", errors.New("assign mode needs a carrier"))
		}
		if l.assignedCarrierID != nil && !l.assignedCarrierID.IsEqual(*opts.AssignedCarrierID) {
			return errs.NewConflictError("load", "carrier already assigned")
		}
	case PostingOpen:
	}

	if err := l.Transition(PostedToCarriers, actorID, fmt.Sprintf("posted (%s)", opts.Mode), now); err != nil {
		return err
	}

	l.postingMode = opts.Mode
	l.invitedCarrierIDs = nil
	if opts.Mode == PostingInvite {
		l.invitedCarrierIDs = slices.Clone(opts.InvitedCarrierIDs)
	}
	if opts.Mode == PostingAssign {
		assigned := *opts.AssignedCarrierID
		l.assignedCarrierID = &assigned
	}
	l.allowCounterBids = opts.AllowCounterBids
	l.kycVerified = opts.KYCVerified
	return nil
}

// MarkUnavailable takes a pre-award load off the market.
func (l *Load) MarkUnavailable(actorID kernel.UUID, now time.Time) error {
	return l.Transition(Unavailable, actorID, "marked unavailable", now)
}

// RestoreTarget is the only status an unavailable load may move to: the one
// it left, or pending when that is unknown.
func (l *Load) RestoreTarget() Status {
	if l.previousStatus != nil && *l.previousStatus != Unavailable {
		return *l.previousStatus
	}
	return Pending
}

// RestoreAvailability returns an unavailable load to the state it left.
func (l *Load) RestoreAvailability(actorID kernel.UUID, now time.Time) error {
	if l.status != Unavailable {
		return errs.NewTransitionDeniedErrorWithCause("load", l.status.String(), "available", errors.New("load is not unavailable"))
	}
	return l.Transition(l.RestoreTarget(), actorID, "availability restored", now)
}

// OpenBidding moves a freshly posted load to open_for_bid. It is a no-op for
// loads already past that point.
func (l *Load) OpenBidding(actorID kernel.UUID, now time.Time) error {
	if l.status != PostedToCarriers {
		return nil
	}
	return l.Transition(OpenForBid, actorID, "first bid received", now)
}

// AwardParams is the outcome of a bid acceptance applied to the load.
type AwardParams struct {
	BidID             kernel.UUID
	CarrierID         kernel.UUID
	TruckID           *kernel.UUID
	FinalPrice        kernel.Money
	PickupID          string
	ActorID           kernel.UUID
	AlsoCreateInvoice bool
	Now               time.Time
}

// CanAward checks the award preconditions without mutating the load.
func (l *Load) CanAward(carrierID kernel.UUID) error {
	if !l.status.CanTransitionTo(Awarded) {
		return errs.NewTransitionDeniedError("load", l.status.String(), Awarded.String())
	}
	if l.assignedCarrierID != nil && !l.assignedCarrierID.IsEqual(carrierID) {
		return errs.NewConflictError("load", "load is assigned to another carrier")
	}
	return nil
}

// Award applies an accepted bid: carrier, truck, final price, pickup id and the
// awarded status (optionally followed by invoice_created in the same call).
func (l *Load) Award(p AwardParams) error {
	if err := errors.Join(
		p.BidID.Validate(),
		p.CarrierID.Validate(),
		p.FinalPrice.Validate(),
	); err != nil {
		return err
	}
	if strings.TrimSpace(p.PickupID) == "" {
		return errs.NewValueIsRequiredError("pickupId")
	}
	if l.pickupID != "" {
		return errs.NewConflictError("load", "pickup id already minted")
	}
	if err := l.CanAward(p.CarrierID); err != nil {
		return err
	}

	if err := l.Transition(Awarded, p.ActorID, "awarded to bid "+p.BidID.String(), p.Now); err != nil {
		return err
	}

	carrierID, bidID, price := p.CarrierID, p.BidID, p.FinalPrice
	l.assignedCarrierID = &carrierID
	l.awardedBidID = &bidID
	l.finalPrice = &price
	l.pickupID = p.PickupID
	if p.TruckID != nil {
		truckID := *p.TruckID
		l.assignedTruckID = &truckID
	}

	if p.AlsoCreateInvoice {
		return l.Transition(InvoiceCreated, p.ActorID, "invoice step on award", p.Now)
	}
	return nil
}

// PendingHistory returns the history records produced since the load was
// loaded or last flushed.
func (l *Load) PendingHistory() []HistoryRecord {
	return slices.Clone(l.pendingHistory)
}

// ClearPendingHistory is called by the repository once the records are stored.
func (l *Load) ClearPendingHistory() {
	l.pendingHistory = nil
}

func (l *Load) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	l.id = id
	return nil
}

func (l *Load) setShipperID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("shipperId", err)
	}
	l.shipperID = id
	return nil
}

func (l *Load) setLane(lane Lane) error {
	l.lane = Lane{
		OriginZone:      strings.TrimSpace(lane.OriginZone),
		DestinationZone: strings.TrimSpace(lane.DestinationZone),
		TruckType:       strings.TrimSpace(lane.TruckType),
	}
	if l.lane.OriginZone == "" {
		return errs.NewValueIsRequiredError("originZone")
	}
	if l.lane.DestinationZone == "" {
		return errs.NewValueIsRequiredError("destinationZone")
	}
	return nil
}

func (l *Load) setSuggestedPrice(price *kernel.Money) error {
	if price == nil {
		return nil
	}
	if err := price.Validate(); err != nil {
		return err
	}
	l.suggestedPrice = price
	return nil
}
