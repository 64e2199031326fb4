package ports

import (
	"context"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
)

type EventType string

const (
	EventLoadUpdated        EventType = "load.updated"
	EventLoadPosted         EventType = "load.posted"
	EventBidPlaced          EventType = "bid.placed"
	EventBidAccepted        EventType = "bid.accepted"
	EventBidRejected        EventType = "bid.rejected"
	EventBidCountered       EventType = "bid.countered"
	EventBidExpired         EventType = "bid.expired"
	EventNegotiationMessage EventType = "negotiation.message"
	EventInvoiceUpdated     EventType = "invoice.updated"
)

// Scope addresses an event. A nil UserID reaches every subscriber holding
// Role; otherwise only that user receives it.
type Scope struct {
	Role   user.Role    `json:"role"`
	UserID *kernel.UUID `json:"userId,omitempty"`
}

func RoleScope(role user.Role) Scope {
	return Scope{Role: role}
}

func UserScope(role user.Role, id kernel.UUID) Scope {
	return Scope{Role: role, UserID: &id}
}

// Matches reports whether a subscriber with the given role and id is addressed.
func (s Scope) Matches(role user.Role, id kernel.UUID) bool {
	if s.Role != role {
		return false
	}
	return s.UserID == nil || s.UserID.IsEqual(id)
}

// Event is a notification about a committed change. LoadID keys the event for
// ordered transports.
type Event struct {
	Type       EventType   `json:"type"`
	Scope      Scope       `json:"scope"`
	LoadID     kernel.UUID `json:"loadId"`
	Payload    any         `json:"payload"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// Publisher delivers events at most once. A failed publish never undoes the
// change it describes.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
