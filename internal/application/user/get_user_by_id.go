package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

type GetUserByIDInput struct {
	ID string
}

type UserOutput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
}

type GetUserByIDOutput = UserOutput

type GetUserByID interface {
	Execute(ctx context.Context, in GetUserByIDInput) (GetUserByIDOutput, error)
}

type userGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type getUserByID struct {
	repo userGetter
}

func NewGetUserByID(repo userGetter) GetUserByID {
	return &getUserByID{repo: repo}
}

func (uc *getUserByID) Execute(ctx context.Context, in GetUserByIDInput) (GetUserByIDOutput, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return GetUserByIDOutput{}, ErrInvalidUserID
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return GetUserByIDOutput{}, ErrUserNotFound
		}
		return GetUserByIDOutput{}, fmt.Errorf("%w: %v", ErrGetUserByID, err)
	}

	return toUserOutput(*u), nil
}

func toUserOutput(u domain.User) UserOutput {
	return UserOutput{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  u.Phone,
		Gender: u.Gender,
	}
}
