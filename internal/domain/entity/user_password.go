package entity

import "github.com/oksasatya/jobify/pkg/apperror"

const MinPasswordLength = 6

// HashFunc turns a raw password into its stored hash.
type HashFunc func(raw string) (string, error)

// UserPassword keeps the hash and, only during registration, the raw value.
type UserPassword struct {
	raw    string
	hashed string
}

// NewHashedPassword wraps a hash loaded from storage.
func NewHashedPassword(hashed string) (UserPassword, error) {
	if hashed == "" {
		return UserPassword{}, apperror.BadRequest("password is required")
	}
	return UserPassword{hashed: hashed}, nil
}

// NewRawPassword validates raw and hashes it with hash.
func NewRawPassword(raw string, hash HashFunc) (UserPassword, error) {
	if raw == "" {
		return UserPassword{}, apperror.BadRequest("password is required")
	}
	if len(raw) < MinPasswordLength {
		return UserPassword{}, apperror.BadRequest("password must be at least 6 characters long")
	}
	hashed, err := hash(raw)
	if err != nil {
		return UserPassword{}, err
	}
	return UserPassword{raw: raw, hashed: hashed}, nil
}

func (p UserPassword) Raw() string    { return p.raw }
func (p UserPassword) Hashed() string { return p.hashed }
