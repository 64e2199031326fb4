package commands

import (
	"errors"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var ErrAcceptBidCommandIsNotConstructed = errors.New(
	"AcceptBidCommand must be created via NewAcceptBidCommand constructor",
)

// AcceptBidCommand awards a load to one bid.
//
// finalPrice overrides the negotiated amount when set. idempotencyKey keys the
// award artifacts; when empty it defaults to AwardKey(bidID), so retries of the
// same acceptance converge on the same invoice and shipment.
type AcceptBidCommand struct {
	bidID          kernel.UUID
	actor          user.Actor
	finalPrice     *kernel.Money
	idempotencyKey string

	guard guard.ConstructorGuard
}

func NewAcceptBidCommand(
	bidID kernel.UUID,
	actor user.Actor,
	finalPrice *kernel.Money,
	idempotencyKey string,
) (AcceptBidCommand, error) {
	if err := errors.Join(bidID.Validate(), actor.Validate()); err != nil {
		return AcceptBidCommand{}, err
	}
	if finalPrice != nil {
		if err := finalPrice.Validate(); err != nil {
			return AcceptBidCommand{}, err
		}
	}

	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		key = AwardKey(bidID)
	}

	return AcceptBidCommand{
		bidID:          bidID,
		actor:          actor,
		finalPrice:     finalPrice,
		idempotencyKey: key,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c AcceptBidCommand) Validate() error {
	return c.guard.Validate(ErrAcceptBidCommandIsNotConstructed)
}

func (c AcceptBidCommand) BidID() kernel.UUID        { return c.bidID }
func (c AcceptBidCommand) Actor() user.Actor         { return c.actor }
func (c AcceptBidCommand) FinalPrice() *kernel.Money { return c.finalPrice }
func (c AcceptBidCommand) IdempotencyKey() string    { return c.idempotencyKey }
