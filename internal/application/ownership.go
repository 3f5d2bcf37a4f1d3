package application

import (
	"context"

	"github.com/oksasatya/jobify/internal/domain/entity"
	repo "github.com/oksasatya/jobify/internal/domain/repository"
	"github.com/oksasatya/jobify/pkg/apperror"
)

// OwnershipValidator decides whether an acting user may operate on a
// resource owned by someone else.
type OwnershipValidator struct {
	Users repo.UserRepository
}

func NewOwnershipValidator(users repo.UserRepository) *OwnershipValidator {
	return &OwnershipValidator{Users: users}
}

// Validate fails with an unauthenticated error when the acting user no longer
// exists and with an unauthorized error when it is neither the owner nor
// allowed to bypass ownership.
func (v *OwnershipValidator) Validate(ctx context.Context, actingUserID, resourceOwnerID entity.EntityID) error {
	u, err := findUser(ctx, v.Users, actingUserID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperror.Unauthenticated(msgAuthInvalid)
	}
	if resourceOwnerID == u.ID || u.Role.CanBypassOwnership() {
		return nil
	}
	return apperror.Unauthorized(msgNotAuthorized)
}
