package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/jobify/internal/domain/entity"
	repo "github.com/oksasatya/jobify/internal/domain/repository"
	"github.com/oksasatya/jobify/pkg/apperror"
)

const (
	msgAuthInvalid        = "Authentication Invalid"
	msgNotAuthorized      = "Not authorized to access this route"
	msgInvalidCredentials = "Invalid credentials"
	msgEmailInUse         = "E-mail already in use"
)

func userNotFound(id string) *apperror.AppError {
	return apperror.NotFound(fmt.Sprintf("User with id %s not found", id))
}

func jobNotFound(id string) *apperror.AppError {
	return apperror.NotFound(fmt.Sprintf("Job not found with id %s", id))
}

// internal passes AppErrors through and wraps anything else.
func internal(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal(err)
}

// findUser returns (nil, nil) when the user does not exist.
func findUser(ctx context.Context, users repo.UserRepository, id entity.EntityID) (*entity.User, error) {
	u, err := users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err)
	}
	return u, nil
}

func findJob(ctx context.Context, jobs repo.JobRepository, id entity.EntityID) (*entity.Job, error) {
	j, err := jobs.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err)
	}
	return j, nil
}

// actingUserID parses the id carried by the session. A malformed id means the
// session cannot be trusted.
func actingUserID(s string) (entity.EntityID, error) {
	id, err := entity.NewEntityID(s)
	if err != nil {
		return "", apperror.Unauthenticated(msgAuthInvalid)
	}
	return id, nil
}
