package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("freight/commands")

// LoadChanged is the payload of load events. It carries no prices: receivers
// re-read the load through the visibility projection.
type LoadChanged struct {
	LoadID         kernel.UUID  `json:"loadId"`
	Status         load.Status  `json:"status"`
	PreviousStatus *load.Status `json:"previousStatus,omitempty"`
}

// BidChanged is the payload of bid events.
type BidChanged struct {
	BidID     kernel.UUID   `json:"bidId"`
	LoadID    kernel.UUID   `json:"loadId"`
	CarrierID kernel.UUID   `json:"carrierId"`
	Status    bid.Status    `json:"status"`
	Amount    *kernel.Money `json:"amount,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

func loadChanged(l *load.Load) LoadChanged {
	return LoadChanged{LoadID: l.ID(), Status: l.Status(), PreviousStatus: l.PreviousStatus()}
}

func bidChanged(b *bid.Bid) BidChanged {
	amount := b.Amount()
	switch {
	case b.AcceptedAmount() != nil:
		amount = *b.AcceptedAmount()
	case b.CounterAmount() != nil:
		amount = *b.CounterAmount()
	}
	return BidChanged{
		BidID:     b.ID(),
		LoadID:    b.LoadID(),
		CarrierID: b.CarrierID(),
		Status:    b.Status(),
		Amount:    &amount,
		Reason:    b.RejectionReason(),
	}
}

// loadAudience is everyone who follows a load: admins, the owning shipper and
// the assigned carrier once there is one.
func loadAudience(l *load.Load) []ports.Scope {
	scopes := []ports.Scope{
		ports.RoleScope(user.RoleAdmin),
		ports.UserScope(user.RoleShipper, l.ShipperID()),
	}
	if id := l.AssignedCarrierID(); id != nil {
		scopes = append(scopes, ports.UserScope(user.RoleCarrier, *id))
	}
	return scopes
}

func loadEvents(l *load.Load, now time.Time) []ports.Event {
	scopes := loadAudience(l)
	events := make([]ports.Event, 0, len(scopes))
	for _, s := range scopes {
		events = append(events, ports.Event{
			Type:       ports.EventLoadUpdated,
			Scope:      s,
			LoadID:     l.ID(),
			Payload:    loadChanged(l),
			OccurredAt: now,
		})
	}
	return events
}

func bidEvent(t ports.EventType, scope ports.Scope, b *bid.Bid, now time.Time) ports.Event {
	return ports.Event{Type: t, Scope: scope, LoadID: b.LoadID(), Payload: bidChanged(b), OccurredAt: now}
}

// notifier publishes committed changes. Publishing is best effort: a failure
// is logged and handed back as a warning, never as an error.
type notifier struct {
	publisher ports.Publisher
	logger    *zap.Logger
}

func newNotifier(publisher ports.Publisher, logger *zap.Logger) notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return notifier{publisher: publisher, logger: logger}
}

func (n notifier) publish(ctx context.Context, events ...ports.Event) []*errs.DependencyFailureError {
	if n.publisher == nil {
		return nil
	}
	var warnings []*errs.DependencyFailureError
	for _, e := range events {
		if err := n.publisher.Publish(ctx, e); err != nil {
			n.logger.Warn("publish failed",
				zap.String("event", string(e.Type)),
				zap.String("load_id", e.LoadID.String()),
				zap.Error(err),
			)
			warnings = append(warnings, errs.NewDependencyFailureError("publisher", err))
		}
	}
	return warnings
}
