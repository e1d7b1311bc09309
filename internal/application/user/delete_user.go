package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

type DeleteUserInput struct {
	ID string
}

type DeleteUser interface {
	Execute(ctx context.Context, in DeleteUserInput) error
}

type userDeleter interface {
	Delete(ctx context.Context, id string) error
}

type deleteUser struct {
	repo userDeleter
}

func NewDeleteUser(repo userDeleter) DeleteUser {
	return &deleteUser{repo: repo}
}

func (uc *deleteUser) Execute(ctx context.Context, in DeleteUserInput) error {
	if _, err := uuid.Parse(in.ID); err != nil {
		return ErrInvalidUserID
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrDeleteUser, err)
	}
	return nil
}
