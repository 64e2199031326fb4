package negotiation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrMessageIsNotConstructed = errors.New("Message must be created via NewMessage or RestoreMessage constructor")

type MessageType string

const (
	TypeMessage      MessageType = "message"
	TypeCounterOffer MessageType = "counter_offer"
	TypeAccept       MessageType = "accept"
	TypeReject       MessageType = "reject"
)

func (t MessageType) Validate() error {
	switch t {
	case TypeMessage, TypeCounterOffer, TypeAccept, TypeReject:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("messageType", fmt.Errorf("%q is not a message type", string(t)))
	}
}

// Message is one entry of a bid's negotiation log. Messages are never edited
// or removed once appended.
type Message struct {
	id         kernel.UUID
	bidID      kernel.UUID
	loadID     kernel.UUID
	senderID   kernel.UUID
	senderRole user.Role
	kind       MessageType
	content    string
	amount     *kernel.Money
	createdAt  time.Time
	guard      guard.ConstructorGuard
}

// NewMessage validates and builds a log entry. A message needs text, an
// amount, or both.
func NewMessage(
	bidID, loadID kernel.UUID,
	sender user.Actor,
	kind MessageType,
	content string,
	amount *kernel.Money,
	now time.Time,
) (*Message, error) {
	content = strings.TrimSpace(content)
	if err := errors.Join(
		bidID.Validate(),
		loadID.Validate(),
		sender.Validate(),
		kind.Validate(),
	); err != nil {
		return nil, err
	}
	if content == "" && amount == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("content", errors.New("message needs text or an amount"))
	}
	if amount != nil {
		if err := amount.Validate(); err != nil {
			return nil, err
		}
	}

	return &Message{
		id:         kernel.NewUUID(),
		bidID:      bidID,
		loadID:     loadID,
		senderID:   sender.ID,
		senderRole: sender.Role,
		kind:       kind,
		content:    content,
		amount:     amount,
		createdAt:  now,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func RestoreMessage(
	id, bidID, loadID, senderID kernel.UUID,
	senderRole user.Role,
	kind MessageType,
	content string,
	amount *kernel.Money,
	createdAt time.Time,
) (*Message, error) {
	if err := errors.Join(id.Validate(), bidID.Validate(), senderRole.Validate(), kind.Validate()); err != nil {
		return nil, err
	}
	return &Message{
		id:         id,
		bidID:      bidID,
		loadID:     loadID,
		senderID:   senderID,
		senderRole: senderRole,
		kind:       kind,
		content:    content,
		amount:     amount,
		createdAt:  createdAt,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (m *Message) Validate() error {
	if m == nil {
		return ErrMessageIsNotConstructed
	}
	return m.guard.Validate(ErrMessageIsNotConstructed)
}

func (m *Message) ID() kernel.UUID       { return m.id }
func (m *Message) BidID() kernel.UUID    { return m.bidID }
func (m *Message) LoadID() kernel.UUID   { return m.loadID }
func (m *Message) SenderID() kernel.UUID { return m.senderID }
func (m *Message) SenderRole() user.Role { return m.senderRole }
func (m *Message) Type() MessageType     { return m.kind }
func (m *Message) Content() string       { return m.content }
func (m *Message) Amount() *kernel.Money { return m.amount }
func (m *Message) CreatedAt() time.Time  { return m.createdAt }
