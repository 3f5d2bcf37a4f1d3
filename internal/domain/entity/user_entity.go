package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/jobify/pkg/apperror"
)

// User is the account aggregate. Fields are set through NewUser and changed
// only by building a copy (WithProfile, WithImage).
type User struct {
	ID        EntityID
	Name      string
	LastName  string
	Email     Email
	Password  UserPassword
	Location  string
	Role      Role
	ImageID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserParams struct {
	ID        EntityID
	Name      string
	LastName  string
	Email     Email
	Password  UserPassword
	Location  string
	Role      Role
	ImageID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(p UserParams) (*User, error) {
	name := strings.TrimSpace(p.Name)
	lastName := strings.TrimSpace(p.LastName)
	location := strings.TrimSpace(p.Location)
	switch {
	case name == "":
		return nil, apperror.BadRequest("name is required")
	case lastName == "":
		return nil, apperror.BadRequest("last name is required")
	case location == "":
		return nil, apperror.BadRequest("location is required")
	case p.Email.IsZero():
		return nil, apperror.BadRequest("email is required")
	case !p.Role.IsValid():
		return nil, apperror.BadRequest("role is required")
	}
	return &User{
		ID:        p.ID,
		Name:      name,
		LastName:  lastName,
		Email:     p.Email,
		Password:  p.Password,
		Location:  location,
		Role:      p.Role,
		ImageID:   p.ImageID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func (u *User) IsPersisted() bool { return !u.ID.IsZero() }

func (u *User) HasImage() bool { return u.ImageID != "" }

// WithProfile returns a copy with the editable profile fields replaced.
// Email and password are kept from u.
func (u *User) WithProfile(name, lastName, location string, now time.Time) (*User, error) {
	return NewUser(UserParams{
		ID:        u.ID,
		Name:      name,
		LastName:  lastName,
		Email:     u.Email,
		Password:  u.Password,
		Location:  location,
		Role:      u.Role,
		ImageID:   u.ImageID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: now,
	})
}

// WithImage returns a copy pointing at a different stored image.
func (u *User) WithImage(imageID string, now time.Time) *User {
	cp := *u
	cp.ImageID = imageID
	cp.UpdatedAt = now
	return &cp
}

// UserSummary is the public projection of a user. It never carries a password.
type UserSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Location  string    `json:"location"`
	Role      Role      `json:"role"`
	ImageID   string    `json:"imageId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID.String(),
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email.String(),
		Location:  u.Location,
		Role:      u.Role,
		ImageID:   u.ImageID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
