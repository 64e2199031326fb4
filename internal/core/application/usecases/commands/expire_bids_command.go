package commands

import (
	"errors"
	"time"

	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrExpireBidsCommandIsNotConstructed = errors.New(
	"ExpireBidsCommand must be created via NewExpireBidsCommand constructor",
)

// ExpireBidsCommand closes at most limit active bids whose expiry is before now.
type ExpireBidsCommand struct {
	now   time.Time
	limit int

	guard guard.ConstructorGuard
}

func NewExpireBidsCommand(now time.Time, limit int) (ExpireBidsCommand, error) {
	if now.IsZero() {
		return ExpireBidsCommand{}, errs.NewValueIsRequiredError("now")
	}
	if limit <= 0 {
		return ExpireBidsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return ExpireBidsCommand{now: now, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireBidsCommand) Validate() error {
	return c.guard.Validate(ErrExpireBidsCommandIsNotConstructed)
}

func (c ExpireBidsCommand) Now() time.Time { return c.now }
func (c ExpireBidsCommand) Limit() int     { return c.limit }
