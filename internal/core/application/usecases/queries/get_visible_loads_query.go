package queries

import (
	"errors"

	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var (
	ErrGetVisibleLoadsQueryIsNotConstructed = errors.New(
		"GetVisibleLoadsQuery must be created via NewGetVisibleLoadsQuery constructor",
	)
)

// GetVisibleLoadsQuery lists the loads an actor may see, redacted for its role.
//
// Example:
//
//	query, err := NewGetVisibleLoadsQuery(actor)
//	if err != nil {
//	    return err
//	}
//
//	views, err := handler.Handle(ctx, query)
type GetVisibleLoadsQuery struct {
	actor user.Actor

	guard guard.ConstructorGuard
}

func NewGetVisibleLoadsQuery(actor user.Actor) (GetVisibleLoadsQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetVisibleLoadsQuery{}, err
	}
	return GetVisibleLoadsQuery{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetVisibleLoadsQuery) Validate() error {
	return q.guard.Validate(ErrGetVisibleLoadsQueryIsNotConstructed)
}

func (q GetVisibleLoadsQuery) Actor() user.Actor { return q.actor }
