package commands

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrPlaceBidCommandIsNotConstructed = errors.New(
	"PlaceBidCommand must be created via NewPlaceBidCommand constructor",
)

type PlaceBidCommand struct {
	loadID  kernel.UUID
	actor   user.Actor
	truckID *kernel.UUID
	amount  kernel.Money
	notes   string

	guard guard.ConstructorGuard
}

func NewPlaceBidCommand(
	loadID kernel.UUID,
	actor user.Actor,
	truckID *kernel.UUID,
	amount kernel.Money,
	notes string,
) (PlaceBidCommand, error) {
	if err := errors.Join(loadID.Validate(), actor.Validate(), amount.Validate()); err != nil {
		return PlaceBidCommand{}, err
	}
	if !amount.IsPositive() {
		return PlaceBidCommand{}, errs.NewValueIsInvalidErrorWithCause("amount", errors.New("must be greater than zero"))
	}
	if truckID != nil {
		if err := truckID.Validate(); err != nil {
			return PlaceBidCommand{}, err
		}
	}

	return PlaceBidCommand{
		loadID:  loadID,
		actor:   actor,
		truckID: truckID,
		amount:  amount,
		notes:   notes,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c PlaceBidCommand) Validate() error {
	return c.guard.Validate(ErrPlaceBidCommandIsNotConstructed)
}

func (c PlaceBidCommand) LoadID() kernel.UUID   { return c.loadID }
func (c PlaceBidCommand) Actor() user.Actor     { return c.actor }
func (c PlaceBidCommand) TruckID() *kernel.UUID { return c.truckID }
func (c PlaceBidCommand) Amount() kernel.Money  { return c.amount }
func (c PlaceBidCommand) Notes() string         { return c.notes }
