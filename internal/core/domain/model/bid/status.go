package bid

import (
	"fmt"
	"slices"

	"freight/internal/pkg/errs"
)

// Status of a bid. accepted, rejected and expired are terminal.
//
//	pending ──┬──> accepted
//	          ├──> rejected
//	          ├──> expired
//	          └──> countered ──┬──> accepted
//	                           ├──> rejected
//	                           └──> expired
type Status string

const (
	Pending   Status = "pending"
	Countered Status = "countered"
	Accepted  Status = "accepted"
	Rejected  Status = "rejected"
	Expired   Status = "expired"
)

var transitions = map[Status][]Status{
	Pending:   {Accepted, Rejected, Countered, Expired},
	Countered: {Accepted, Rejected, Expired},
	Accepted:  {},
	Rejected:  {},
	Expired:   {},
}

func AllStatuses() []Status {
	return []Status{Pending, Countered, Accepted, Rejected, Expired}
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a bid status", string(s)))
	}
	return nil
}

func (s Status) CanTransitionTo(target Status) bool {
	return slices.Contains(transitions[s], target)
}

func ValidateTransition(from, to Status) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !from.CanTransitionTo(to) {
		return errs.NewTransitionDeniedError("bid", from.String(), to.String())
	}
	return nil
}

// IsActive reports whether the bid is still under negotiation.
func (s Status) IsActive() bool {
	return s == Pending || s == Countered
}

func (s Status) IsTerminal() bool {
	return s == Accepted || s == Rejected || s == Expired
}
