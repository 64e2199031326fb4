package commands

import (
	"errors"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var ErrRejectBidCommandIsNotConstructed = errors.New(
	"RejectBidCommand must be created via NewRejectBidCommand constructor",
)

// RejectBidCommand closes a bid without award. An admin rejects, a carrier
// declines or withdraws its own bid.
type RejectBidCommand struct {
	bidID  kernel.UUID
	actor  user.Actor
	reason string

	guard guard.ConstructorGuard
}

func NewRejectBidCommand(bidID kernel.UUID, actor user.Actor, reason string) (RejectBidCommand, error) {
	if err := errors.Join(bidID.Validate(), actor.Validate()); err != nil {
		return RejectBidCommand{}, err
	}
	return RejectBidCommand{
		bidID:  bidID,
		actor:  actor,
		reason: strings.TrimSpace(reason),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c RejectBidCommand) Validate() error {
	return c.guard.Validate(ErrRejectBidCommandIsNotConstructed)
}

func (c RejectBidCommand) BidID() kernel.UUID { return c.bidID }
func (c RejectBidCommand) Actor() user.Actor  { return c.actor }
func (c RejectBidCommand) Reason() string     { return c.reason }
