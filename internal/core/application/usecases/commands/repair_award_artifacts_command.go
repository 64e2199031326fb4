package commands

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrRepairAwardArtifactsCommandIsNotConstructed = errors.New(
	"RepairAwardArtifactsCommand must be created via NewRepairAwardArtifactsCommand or NewRepairAllAwardArtifactsCommand constructor",
)

// RepairAwardArtifactsCommand re-runs invoice and shipment creation either for
// one load or for a batch of awarded loads missing an artifact. A nil actor
// means the scheduler.
type RepairAwardArtifactsCommand struct {
	loadID *kernel.UUID
	limit  int
	actor  *user.Actor

	guard guard.ConstructorGuard
}

func NewRepairAwardArtifactsCommand(loadID kernel.UUID, actor *user.Actor) (RepairAwardArtifactsCommand, error) {
	if err := loadID.Validate(); err != nil {
		return RepairAwardArtifactsCommand{}, err
	}
	if actor != nil {
		if err := actor.Validate(); err != nil {
			return RepairAwardArtifactsCommand{}, err
		}
	}
	return RepairAwardArtifactsCommand{loadID: &loadID, limit: 1, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func NewRepairAllAwardArtifactsCommand(limit int) (RepairAwardArtifactsCommand, error) {
	if limit <= 0 {
		return RepairAwardArtifactsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return RepairAwardArtifactsCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c RepairAwardArtifactsCommand) Validate() error {
	return c.guard.Validate(ErrRepairAwardArtifactsCommandIsNotConstructed)
}

func (c RepairAwardArtifactsCommand) LoadID() *kernel.UUID { return c.loadID }
func (c RepairAwardArtifactsCommand) Limit() int           { return c.limit }
func (c RepairAwardArtifactsCommand) Actor() *user.Actor   { return c.actor }
