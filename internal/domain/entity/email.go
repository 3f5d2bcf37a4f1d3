package entity

import (
	"regexp"
	"strings"

	"github.com/oksasatya/jobify/pkg/apperror"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a normalized (trimmed, lower-cased) address.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Email{}, apperror.BadRequest("email is required")
	}
	if len(v) > maxEmailLength {
		return Email{}, apperror.BadRequest("email must be at most 254 characters long")
	}
	if !emailPattern.MatchString(v) {
		return Email{}, apperror.BadRequest("invalid email address")
	}
	return Email{value: v}, nil
}

func (e Email) String() string { return e.value }

func (e Email) IsZero() bool { return e.value == "" }
