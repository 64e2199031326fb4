package commands

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var ErrPriceLoadCommandIsNotConstructed = errors.New(
	"PriceLoadCommand must be created via NewPriceLoadCommand constructor",
)

// PriceLoadCommand sets the shipper-facing admin price of a pending load.
type PriceLoadCommand struct {
	loadID          kernel.UUID
	adminFinalPrice kernel.Money
	actor           user.Actor

	guard guard.ConstructorGuard
}

func NewPriceLoadCommand(loadID kernel.UUID, adminFinalPrice kernel.Money, actor user.Actor) (PriceLoadCommand, error) {
	if err := errors.Join(loadID.Validate(), adminFinalPrice.Validate(), actor.Validate()); err != nil {
		return PriceLoadCommand{}, err
	}
	return PriceLoadCommand{
		loadID:          loadID,
		adminFinalPrice: adminFinalPrice,
		actor:           actor,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c PriceLoadCommand) Validate() error {
	return c.guard.Validate(ErrPriceLoadCommandIsNotConstructed)
}

func (c PriceLoadCommand) LoadID() kernel.UUID           { return c.loadID }
func (c PriceLoadCommand) AdminFinalPrice() kernel.Money { return c.adminFinalPrice }
func (c PriceLoadCommand) Actor() user.Actor             { return c.actor }
