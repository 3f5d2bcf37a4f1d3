package entity

import "github.com/oksasatya/jobify/pkg/apperror"

// Role is the closed set of authorization roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", apperror.BadRequest("invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// CanBypassOwnership reports whether the role may act on resources it does not own.
func (r Role) CanBypassOwnership() bool {
	return r == RoleAdmin
}

func (r Role) String() string { return string(r) }
