package user

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

type ListUsersInput struct {
	Search string
}

type ListUsersOutput struct {
	Users []UserOutput
	Count int
}

type ListUsers interface {
	Execute(ctx context.Context, in ListUsersInput) (ListUsersOutput, error)
}

type userLister interface {
	List(ctx context.Context, limit int) ([]domain.User, error)
	Search(ctx context.Context, term string) ([]domain.User, error)
}

type listUsers struct {
	repo userLister
}

func NewListUsers(repo userLister) ListUsers {
	return &listUsers{repo: repo}
}

func (uc *listUsers) Execute(ctx context.Context, in ListUsersInput) (ListUsersOutput, error) {
	var (
		users []domain.User
		err   error
	)
	if term := strings.TrimSpace(in.Search); term != "" {
		users, err = uc.repo.Search(ctx, term)
	} else {
		users, err = uc.repo.List(ctx, 0)
	}
	if err != nil {
		return ListUsersOutput{}, fmt.Errorf("%w: %v", ErrListUsers, err)
	}

	out := ListUsersOutput{Users: make([]UserOutput, 0, len(users)), Count: len(users)}
	for _, u := range users {
		out.Users = append(out.Users, toUserOutput(u))
	}
	return out, nil
}
