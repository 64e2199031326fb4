package commands

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var ErrCounterBidCommandIsNotConstructed = errors.New(
	"CounterBidCommand must be created via NewCounterBidCommand constructor",
)

// CounterBidCommand records the admin's counter offer on a pending bid.
type CounterBidCommand struct {
	bidID  kernel.UUID
	amount kernel.Money
	actor  user.Actor
	note   string

	guard guard.ConstructorGuard
}

func NewCounterBidCommand(bidID kernel.UUID, amount kernel.Money, actor user.Actor, note string) (CounterBidCommand, error) {
	if err := errors.Join(bidID.Validate(), amount.Validate(), actor.Validate()); err != nil {
		return CounterBidCommand{}, err
	}
	return CounterBidCommand{
		bidID:  bidID,
		amount: amount,
		actor:  actor,
		note:   note,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c CounterBidCommand) Validate() error {
	return c.guard.Validate(ErrCounterBidCommandIsNotConstructed)
}

func (c CounterBidCommand) BidID() kernel.UUID   { return c.bidID }
func (c CounterBidCommand) Amount() kernel.Money { return c.amount }
func (c CounterBidCommand) Actor() user.Actor    { return c.actor }
func (c CounterBidCommand) Note() string         { return c.note }
