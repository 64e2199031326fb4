package negotiation

import (
	"regexp"
	"strings"

	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"

	"github.com/shopspring/decimal"
)

// DefaultAmountFloor filters out numbers in free text that cannot be a price
// ("2 trucks", "ready by 7").
var DefaultAmountFloor = kernel.MustMoney(100)

// amountPattern matches 1150, 1,150, $1150.50 and 1,150.00.
var amountPattern = regexp.MustCompile(`\$?\d{1,3}(?:,\d{3})+(?:\.\d+)?|\$?\d+(?:\.\d+)?`)

// OfferAmount extracts the amount a message proposes: the explicit amount if
// it clears the floor, otherwise the first number in the text that does.
func (m *Message) OfferAmount(floor kernel.Money) (kernel.Money, bool) {
	if m.amount != nil && m.amount.GreaterThanOrEqual(floor) {
		return *m.amount, true
	}
	for _, raw := range amountPattern.FindAllString(m.content, -1) {
		cleaned := strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", "")
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			continue
		}
		amount, err := kernel.NewMoney(d)
		if err != nil {
			continue
		}
		if amount.GreaterThanOrEqual(floor) {
			return amount, true
		}
	}
	return kernel.Money{}, false
}

// CurrentOffer scans the log newest to oldest and returns the first offer made
// by a sender in the given role. The log is expected in append order.
func CurrentOffer(log []*Message, side user.Role, floor kernel.Money) (kernel.Money, bool) {
	for i := len(log) - 1; i >= 0; i-- {
		m := log[i]
		if m.senderRole != side || m.kind == TypeReject {
			continue
		}
		if amount, ok := m.OfferAmount(floor); ok {
			return amount, true
		}
	}
	return kernel.Money{}, false
}

// Offers is the read-time projection of where a negotiation stands.
type Offers struct {
	Carrier kernel.Money  `json:"carrierOffer"`
	Admin   *kernel.Money `json:"adminOffer,omitempty"`
}

// DeriveOffers computes both sides' current offers. With no usable message the
// carrier side falls back to the bid amount and the admin side to the counter
// amount, then to the load's admin price.
func DeriveOffers(log []*Message, b *bid.Bid, adminPrice *kernel.Money, floor kernel.Money) Offers {
	offers := Offers{Carrier: b.Amount()}
	if amount, ok := CurrentOffer(log, user.RoleCarrier, floor); ok {
		offers.Carrier = amount
	}

	if amount, ok := CurrentOffer(log, user.RoleAdmin, floor); ok {
		offers.Admin = &amount
	} else if b.CounterAmount() != nil {
		offers.Admin = b.CounterAmount()
	} else if adminPrice != nil {
		offers.Admin = adminPrice
	}
	return offers
}
