package load

import (
	"fmt"

	"freight/internal/pkg/errs"
)

// PostingMode controls which carriers see a posted load.
type PostingMode string

const (
	// PostingOpen exposes the load to every carrier passing eligibility.
	PostingOpen PostingMode = "open"
	// PostingInvite restricts the load to an explicit carrier list.
	PostingInvite PostingMode = "invite"
	// PostingAssign restricts the load to a single pre-assigned carrier.
	PostingAssign PostingMode = "assign"
)

func (m PostingMode) Validate() error {
	switch m {
	case PostingOpen, PostingInvite, PostingAssign:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("postingMode", fmt.Errorf("%q is not a posting mode", string(m)))
	}
}

func (m PostingMode) String() string {
	return string(m)
}
