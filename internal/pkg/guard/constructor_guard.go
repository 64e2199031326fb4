// Package guard holds the zero-value protection embedded in value objects,
// aggregates, commands and queries.
//
// A struct embeds ConstructorGuard and its constructor sets it with
// NewConstructorGuard. Validate then rejects values that were declared
// directly (var cmd AcceptBidCommand) and so skipped constructor validation.
package guard

import "errors"

var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

type ConstructorGuard struct {
	isConstructed bool
}

func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns notConstructed (or ErrDefaultConstructorGuard when nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(notConstructed error) error {
	if g.isConstructed {
		return nil
	}
	if notConstructed == nil {
		return ErrDefaultConstructorGuard
	}
	return notConstructed
}
