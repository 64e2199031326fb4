// Package user holds platform accounts and their roles.
package user

import (
	"errors"
	"fmt"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrUserIsNotConstructed = errors.New("User must be created via NewUser constructor")

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleShipper Role = "shipper"
	RoleCarrier Role = "carrier"
)

func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleShipper, RoleCarrier:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	id    kernel.UUID
	role  Role
	name  string
	email string
	guard guard.ConstructorGuard
}

func NewUser(id kernel.UUID, role Role, name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	if err := errors.Join(id.Validate(), role.Validate()); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errs.NewValueIsRequiredError("name")
	}
	return &User{id: id, role: role, name: name, email: strings.TrimSpace(email), guard: guard.NewConstructorGuard()}, nil
}

func (u *User) Validate() error {
	if u == nil {
		return ErrUserIsNotConstructed
	}
	return u.guard.Validate(ErrUserIsNotConstructed)
}

func (u *User) ID() kernel.UUID { return u.id }
func (u *User) Role() Role      { return u.role }
func (u *User) Name() string    { return u.name }
func (u *User) Email() string   { return u.email }

// Actor is the authenticated caller of an operation: who, and in which role.
type Actor struct {
	ID   kernel.UUID
	Role Role
}

func (a Actor) Validate() error {
	return errors.Join(a.ID.Validate(), a.Role.Validate())
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsShipper() bool { return a.Role == RoleShipper }
func (a Actor) IsCarrier() bool { return a.Role == RoleCarrier }

func (a Actor) String() string {
	return fmt.Sprintf("%s %s", a.Role, a.ID)
}
