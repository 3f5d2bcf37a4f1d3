package entity

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/jobify/pkg/apperror"
)

var entityIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// EntityID is a 24 character hexadecimal identifier, stored lower case.
// The zero value means "not persisted yet".
type EntityID string

func NewEntityID(s string) (EntityID, error) {
	if !entityIDPattern.MatchString(s) {
		return "", apperror.BadRequest("invalid id")
	}
	return EntityID(strings.ToLower(s)), nil
}

// GenerateEntityID issues a new id using the ObjectID layout.
func GenerateEntityID() EntityID {
	return EntityID(primitive.NewObjectID().Hex())
}

func (id EntityID) String() string { return string(id) }

func (id EntityID) IsZero() bool { return id == "" }
