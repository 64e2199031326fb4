package commands

import (
	"errors"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrAdvanceInvoiceCommandIsNotConstructed = errors.New(
	"AdvanceInvoiceCommand must be created via NewAdvanceInvoiceCommand constructor",
)

type AdvanceInvoiceCommand struct {
	loadID        kernel.UUID
	action        InvoiceAction
	actor         user.Actor
	note          string
	revisedAmount *kernel.Money

	guard guard.ConstructorGuard
}

// NewAdvanceInvoiceCommand: revisedAmount only applies to the revise action
// and must be positive when given.
func NewAdvanceInvoiceCommand(
	loadID kernel.UUID,
	action InvoiceAction,
	actor user.Actor,
	note string,
	revisedAmount *kernel.Money,
) (AdvanceInvoiceCommand, error) {
	if err := errors.Join(loadID.Validate(), action.Validate(), actor.Validate()); err != nil {
		return AdvanceInvoiceCommand{}, err
	}
	if revisedAmount != nil {
		if action != InvoiceRevise {
			return AdvanceInvoiceCommand{}, errs.NewValueIsInvalidErrorWithCause("revisedAmount",
				errors.New("only the revise action takes an amount"))
		}
		if !revisedAmount.IsPositive() {
			return AdvanceInvoiceCommand{}, errs.NewValueIsInvalidErrorWithCause("revisedAmount",
				errors.New("must be greater than zero"))
		}
	}

	return AdvanceInvoiceCommand{
		loadID:        loadID,
		action:        action,
		actor:         actor,
		note:          strings.TrimSpace(note),
		revisedAmount: revisedAmount,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c AdvanceInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceInvoiceCommandIsNotConstructed)
}

func (c AdvanceInvoiceCommand) LoadID() kernel.UUID          { return c.loadID }
func (c AdvanceInvoiceCommand) Action() InvoiceAction        { return c.action }
func (c AdvanceInvoiceCommand) Actor() user.Actor            { return c.actor }
func (c AdvanceInvoiceCommand) Note() string                 { return c.note }
func (c AdvanceInvoiceCommand) RevisedAmount() *kernel.Money { return c.revisedAmount }
