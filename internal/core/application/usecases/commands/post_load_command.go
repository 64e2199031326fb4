package commands

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var ErrPostLoadCommandIsNotConstructed = errors.New(
	"PostLoadCommand must be created via NewPostLoadCommand constructor",
)

// PostLoadCommand publishes a priced load to carriers.
//
// Example:
//
//	cmd, err := NewPostLoadCommand(loadID, load.PostingOptions{
//	    Mode:              load.PostingInvite,
//	    InvitedCarrierIDs: []kernel.UUID{carrierA, carrierB},
//	    AllowCounterBids:  true,
//	}, admin)
type PostLoadCommand struct {
	loadID  kernel.UUID
	options load.PostingOptions
	actor   user.Actor

	guard guard.ConstructorGuard
}

func NewPostLoadCommand(loadID kernel.UUID, options load.PostingOptions, actor user.Actor) (PostLoadCommand, error) {
	if err := errors.Join(loadID.Validate(), options.Mode.Validate(), actor.Validate()); err != nil {
		return PostLoadCommand{}, err
	}
	return PostLoadCommand{
		loadID:  loadID,
		options: options,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c PostLoadCommand) Validate() error {
	return c.guard.Validate(ErrPostLoadCommandIsNotConstructed)
}

func (c PostLoadCommand) LoadID() kernel.UUID          { return c.loadID }
func (c PostLoadCommand) Options() load.PostingOptions { return c.options }
func (c PostLoadCommand) Actor() user.Actor            { return c.actor }
