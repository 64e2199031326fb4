package queries

import (
	"errors"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var (
	ErrGetLoadHistoryQueryIsNotConstructed = errors.New(
		"GetLoadHistoryQuery must be created via NewGetLoadHistoryQuery constructor",
	)
)

// GetLoadHistoryQuery retrieves the status audit trail of one load.
//
// Example:
//
//	query, _ := NewGetLoadHistoryQuery(loadID, actor)
//	entries, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to read history: %w", err)
//	}
//
//	for _, e := range entries {
//	    fmt.Printf("%s -> %s by %s\n", e.FromStatus, e.ToStatus, e.ActorID)
//	}
type GetLoadHistoryQuery struct {
	loadID kernel.UUID
	actor  user.Actor

	guard guard.ConstructorGuard
}

func NewGetLoadHistoryQuery(loadID kernel.UUID, actor user.Actor) (GetLoadHistoryQuery, error) {
	if err := loadID.Validate(); err != nil {
		return GetLoadHistoryQuery{}, err
	}
	if err := actor.Validate(); err != nil {
		return GetLoadHistoryQuery{}, err
	}
	return GetLoadHistoryQuery{loadID: loadID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetLoadHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetLoadHistoryQueryIsNotConstructed)
}

func (q GetLoadHistoryQuery) LoadID() kernel.UUID { return q.loadID }
func (q GetLoadHistoryQuery) Actor() user.Actor   { return q.actor }

// LoadHistoryEntry is one row of the audit trail as returned to callers.
type LoadHistoryEntry struct {
	ID         kernel.UUID `json:"id"`
	FromStatus string      `json:"fromStatus"`
	ToStatus   string      `json:"toStatus"`
	ActorID    kernel.UUID `json:"actorId"`
	Note       string      `json:"note,omitempty"`
	At         time.Time   `json:"at"`
}
