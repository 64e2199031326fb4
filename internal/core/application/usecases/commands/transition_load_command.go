package commands

import (
	"errors"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var ErrTransitionLoadCommandIsNotConstructed = errors.New(
	"TransitionLoadCommand must be created via NewTransitionLoadCommand constructor",
)

// TransitionLoadCommand requests a single load status change on behalf of an actor.
//
// Example:
//
//	cmd, err := NewTransitionLoadCommand(loadID, load.Pending, actor, "ready for pricing")
//	if err != nil {
//	    return err
//	}
//	l, err := handler.Handle(ctx, cmd)
type TransitionLoadCommand struct {
	loadID kernel.UUID
	target load.Status
	actor  user.Actor
	note   string

	guard guard.ConstructorGuard
}

func NewTransitionLoadCommand(loadID kernel.UUID, target load.Status, actor user.Actor, note string) (TransitionLoadCommand, error) {
	if err := errors.Join(loadID.Validate(), target.Validate(), actor.Validate()); err != nil {
		return TransitionLoadCommand{}, err
	}
	return TransitionLoadCommand{
		loadID: loadID,
		target: target,
		actor:  actor,
		note:   strings.TrimSpace(note),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// NewSubmitLoadCommand is the shipper's draft → pending step.
func NewSubmitLoadCommand(loadID kernel.UUID, actor user.Actor) (TransitionLoadCommand, error) {
	return NewTransitionLoadCommand(loadID, load.Pending, actor, "submitted")
}

func (c TransitionLoadCommand) Validate() error {
	return c.guard.Validate(ErrTransitionLoadCommandIsNotConstructed)
}

func (c TransitionLoadCommand) LoadID() kernel.UUID { return c.loadID }
func (c TransitionLoadCommand) Target() load.Status { return c.target }
func (c TransitionLoadCommand) Actor() user.Actor   { return c.actor }
func (c TransitionLoadCommand) Note() string        { return c.note }
