package queries

import (
	"errors"
	"time"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/guard"
)

var (
	ErrGetNegotiationThreadQueryIsNotConstructed = errors.New(
		"GetNegotiationThreadQuery must be created via NewGetNegotiationThreadQuery constructor",
	)
)

// GetNegotiationThreadQuery retrieves the message log of a bid together with
// the offers derived from it.
type GetNegotiationThreadQuery struct {
	bidID kernel.UUID
	actor user.Actor

	guard guard.ConstructorGuard
}

func NewGetNegotiationThreadQuery(bidID kernel.UUID, actor user.Actor) (GetNegotiationThreadQuery, error) {
	if err := bidID.Validate(); err != nil {
		return GetNegotiationThreadQuery{}, err
	}
	if err := actor.Validate(); err != nil {
		return GetNegotiationThreadQuery{}, err
	}
	return GetNegotiationThreadQuery{bidID: bidID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetNegotiationThreadQuery) Validate() error {
	return q.guard.Validate(ErrGetNegotiationThreadQueryIsNotConstructed)
}

func (q GetNegotiationThreadQuery) BidID() kernel.UUID { return q.bidID }
func (q GetNegotiationThreadQuery) Actor() user.Actor  { return q.actor }

type ThreadMessage struct {
	ID         kernel.UUID             `json:"id"`
	SenderID   kernel.UUID             `json:"senderId"`
	SenderRole user.Role               `json:"senderRole"`
	Type       negotiation.MessageType `json:"type"`
	Content    string                  `json:"content"`
	Amount     *kernel.Money           `json:"amount,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// NegotiationThread is the read model of one bid's negotiation. Offers is nil
// for shippers, who never see carrier-side amounts.
type NegotiationThread struct {
	BidID     kernel.UUID         `json:"bidId"`
	LoadID    kernel.UUID         `json:"loadId"`
	CarrierID kernel.UUID         `json:"carrierId"`
	Status    bid.Status          `json:"status"`
	Messages  []ThreadMessage     `json:"messages"`
	Offers    *negotiation.Offers `json:"offers,omitempty"`
}
