package commands

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var ErrSetLoadAvailabilityCommandIsNotConstructed = errors.New(
	"SetLoadAvailabilityCommand must be created via NewSetLoadAvailabilityCommand constructor",
)

// SetLoadAvailabilityCommand takes a pre-award load off the market or puts it back.
type SetLoadAvailabilityCommand struct {
	loadID    kernel.UUID
	available bool
	actor     user.Actor

	guard guard.ConstructorGuard
}

func NewSetLoadAvailabilityCommand(loadID kernel.UUID, available bool, actor user.Actor) (SetLoadAvailabilityCommand, error) {
	if err := errors.Join(loadID.Validate(), actor.Validate()); err != nil {
		return SetLoadAvailabilityCommand{}, err
	}
	return SetLoadAvailabilityCommand{
		loadID:    loadID,
		available: available,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SetLoadAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetLoadAvailabilityCommandIsNotConstructed)
}

func (c SetLoadAvailabilityCommand) LoadID() kernel.UUID { return c.loadID }
func (c SetLoadAvailabilityCommand) Available() bool     { return c.available }
func (c SetLoadAvailabilityCommand) Actor() user.Actor   { return c.actor }
