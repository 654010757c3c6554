package auth

import (
	"errors"
	"strings"
)

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleCustomer Role = "customer"
	// RoleService is held by the checkout subsystem, which records redemptions on
	// behalf of shoppers.
	RoleService Role = "service"
	RoleAdmin   Role = "admin"
)

var roleLevels = map[Role]int{
	RoleCustomer: 1,
	RoleService:  2,
	RoleAdmin:    3,
}

func NewRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleLevels[r]; !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) String() string {
	return string(r)
}

// AtLeast reports whether r ranks at or above min. Unknown roles rank below everything.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleLevels[r]
	if !ok {
		return false
	}
	need, ok := roleLevels[min]
	return ok && have >= need
}

// Principal is the identity carried by a verified access token. UserID is the
// opaque subject issued by the identity provider.
type Principal struct {
	UserID string
	Role   Role
}
