package models

import "fmt"

type Role string

const (
	RoleNone     Role = ""
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return RoleNone, fmt.Errorf("%q: %w", s, ErrUnknownRole)
	}
	return r, nil
}

// Session is the canonical record for an authenticated browser context.
// Token and Role are either both set or both empty.
type Session struct {
	Token      string
	Role       Role
	UserInfo   map[string]any
	RememberMe bool
}

// Complete reports whether the session satisfies the token/role invariant with both present.
func (s Session) Complete() bool {
	return s.Token != "" && s.Role.Valid()
}
