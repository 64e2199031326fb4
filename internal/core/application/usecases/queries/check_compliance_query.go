package queries

import (
	"errors"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var (
	ErrCheckComplianceQueryIsNotConstructed = errors.New(
		"CheckComplianceQuery must be created via NewCheckComplianceQuery constructor",
	)
)

// CheckComplianceQuery evaluates a carrier's documents at a point in time.
type CheckComplianceQuery struct {
	carrierID kernel.UUID
	actor     user.Actor
	at        time.Time

	guard guard.ConstructorGuard
}

func NewCheckComplianceQuery(carrierID kernel.UUID, actor user.Actor, at time.Time) (CheckComplianceQuery, error) {
	if err := carrierID.Validate(); err != nil {
		return CheckComplianceQuery{}, err
	}
	if err := actor.Validate(); err != nil {
		return CheckComplianceQuery{}, err
	}
	if at.IsZero() {
		return CheckComplianceQuery{}, errs.NewValueIsRequiredError("at")
	}
	return CheckComplianceQuery{carrierID: carrierID, actor: actor, at: at, guard: guard.NewConstructorGuard()}, nil
}

func (q CheckComplianceQuery) Validate() error {
	return q.guard.Validate(ErrCheckComplianceQueryIsNotConstructed)
}

func (q CheckComplianceQuery) CarrierID() kernel.UUID { return q.carrierID }
func (q CheckComplianceQuery) Actor() user.Actor      { return q.actor }
func (q CheckComplianceQuery) At() time.Time          { return q.at }
