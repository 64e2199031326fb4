package queries

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var (
	ErrCheckEligibilityQueryIsNotConstructed = errors.New(
		"CheckEligibilityQuery must be created via NewCheckEligibilityQuery constructor",
	)
)

// CheckEligibilityQuery asks whether a carrier may bid on a load, and why not.
type CheckEligibilityQuery struct {
	loadID    kernel.UUID
	carrierID kernel.UUID
	actor     user.Actor

	guard guard.ConstructorGuard
}

func NewCheckEligibilityQuery(loadID, carrierID kernel.UUID, actor user.Actor) (CheckEligibilityQuery, error) {
	if err := loadID.Validate(); err != nil {
		return CheckEligibilityQuery{}, err
	}
	if err := carrierID.Validate(); err != nil {
		return CheckEligibilityQuery{}, err
	}
	if err := actor.Validate(); err != nil {
		return CheckEligibilityQuery{}, err
	}
	return CheckEligibilityQuery{
		loadID:    loadID,
		carrierID: carrierID,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q CheckEligibilityQuery) Validate() error {
	return q.guard.Validate(ErrCheckEligibilityQueryIsNotConstructed)
}

func (q CheckEligibilityQuery) LoadID() kernel.UUID    { return q.loadID }
func (q CheckEligibilityQuery) CarrierID() kernel.UUID { return q.carrierID }
func (q CheckEligibilityQuery) Actor() user.Actor      { return q.actor }
