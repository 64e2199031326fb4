package commands

import (
	"errors"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrPostNegotiationMessageCommandIsNotConstructed = errors.New(
	"PostNegotiationMessageCommand must be created via NewPostNegotiationMessageCommand constructor",
)

// PostNegotiationMessageCommand appends a free-text entry to a bid's log. The
// optional amount lets either side state a figure without a formal counter.
type PostNegotiationMessageCommand struct {
	bidID   kernel.UUID
	actor   user.Actor
	content string
	amount  *kernel.Money

	guard guard.ConstructorGuard
}

func NewPostNegotiationMessageCommand(
	bidID kernel.UUID,
	actor user.Actor,
	content string,
	amount *kernel.Money,
) (PostNegotiationMessageCommand, error) {
	if err := errors.Join(bidID.Validate(), actor.Validate()); err != nil {
		return PostNegotiationMessageCommand{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" && amount == nil {
		return PostNegotiationMessageCommand{}, errs.NewValueIsRequiredError("content")
	}

	return PostNegotiationMessageCommand{
		bidID:   bidID,
		actor:   actor,
		content: content,
		amount:  amount,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c PostNegotiationMessageCommand) Validate() error {
	return c.guard.Validate(ErrPostNegotiationMessageCommandIsNotConstructed)
}

func (c PostNegotiationMessageCommand) BidID() kernel.UUID    { return c.bidID }
func (c PostNegotiationMessageCommand) Actor() user.Actor     { return c.actor }
func (c PostNegotiationMessageCommand) Content() string       { return c.content }
func (c PostNegotiationMessageCommand) Amount() *kernel.Money { return c.amount }
