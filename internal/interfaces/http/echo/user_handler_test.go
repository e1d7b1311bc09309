package echo_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/user-pipeline/internal/application/user"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	httpecho "github.com/mohammadpnp/user-pipeline/internal/interfaces/http/echo"
)

const aliceID = "a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e"

type fakeGetUserUseCase struct {
	out app.GetUserByIDOutput
	err error
}

func (f *fakeGetUserUseCase) Execute(ctx context.Context, in app.GetUserByIDInput) (app.GetUserByIDOutput, error) {
	if f.err != nil {
		return app.GetUserByIDOutput{}, f.err
	}
	return f.out, nil
}

type fakeListUsersUseCase struct {
	gotSearch string
	out       app.ListUsersOutput
}

func (f *fakeListUsersUseCase) Execute(ctx context.Context, in app.ListUsersInput) (app.ListUsersOutput, error) {
	f.gotSearch = in.Search
	return f.out, nil
}

type fakeCreateUserUseCase struct {
	err error
}

func (f *fakeCreateUserUseCase) Execute(ctx context.Context, in app.CreateUserInput) (app.UserOutput, error) {
	if f.err != nil {
		return app.UserOutput{}, f.err
	}
	return app.UserOutput{ID: aliceID, Name: in.Name, Email: in.Email, Phone: in.Phone}, nil
}

type fakeDeleteUserUseCase struct {
	err error
}

func (f *fakeDeleteUserUseCase) Execute(ctx context.Context, in app.DeleteUserInput) error {
	return f.err
}

func userServer(deps httpecho.UserHandlerDeps) *echo.Echo {
	if deps.GetUser == nil {
		deps.GetUser = &fakeGetUserUseCase{}
	}
	if deps.ListUsers == nil {
		deps.ListUsers = &fakeListUsersUseCase{}
	}
	if deps.CreateUser == nil {
		deps.CreateUser = &fakeCreateUserUseCase{}
	}
	if deps.DeleteUser == nil {
		deps.DeleteUser = &fakeDeleteUserUseCase{}
	}
	return newServer(httpecho.Handlers{Users: httpecho.NewUserHandler(deps)})
}

func TestGetUserByIDHandlerSuccess(t *testing.T) {
	t.Parallel()

	s := userServer(httpecho.UserHandlerDeps{GetUser: &fakeGetUserUseCase{out: app.GetUserByIDOutput{
		ID:    aliceID,
		Name:  "Alice",
		Email: "alice@example.com",
		Phone: "1234567890",
	}}})

	rec := serve(s, http.MethodGet, "/api/users/"+aliceID, nil, "")
	expectStatus(t, rec, http.StatusOK)

	got := decode(t, rec)
	user := got["user"].(map[string]any)
	if user["id"] != aliceID {
		t.Fatalf("unexpected id: %#v", user["id"])
	}
	if got["success"] != true {
		t.Fatalf("expected success=true, got %#v", got["success"])
	}
}

func TestGetUserByIDHandlerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid id", err: app.ErrInvalidUserID, want: http.StatusBadRequest},
		{name: "not found", err: app.ErrUserNotFound, want: http.StatusNotFound},
		{name: "store", err: fmt.Errorf("%w: boom", app.ErrGetUserByID), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := userServer(httpecho.UserHandlerDeps{GetUser: &fakeGetUserUseCase{err: tt.err}})
			rec := serve(s, http.MethodGet, "/api/users/whatever", nil, "")
			expectStatus(t, rec, tt.want)

			got := decode(t, rec)
			if got["success"] != false || got["message"] == "" {
				t.Fatalf("unexpected error body: %#v", got)
			}
		})
	}
}

func TestListUsersHandlerPassesSearch(t *testing.T) {
	t.Parallel()

	list := &fakeListUsersUseCase{out: app.ListUsersOutput{
		Users: []app.UserOutput{{ID: aliceID, Name: "Alice", Email: "alice@example.com"}},
		Count: 1,
	}}
	s := userServer(httpecho.UserHandlerDeps{ListUsers: list})

	rec := serve(s, http.MethodGet, "/api/users/?search=ali", nil, "")
	expectStatus(t, rec, http.StatusOK)

	if list.gotSearch != "ali" {
		t.Fatalf("expected search term to reach the use case, got %q", list.gotSearch)
	}
	got := decode(t, rec)
	if got["count"] != float64(1) {
		t.Fatalf("unexpected count: %#v", got["count"])
	}
	if users := got["users"].([]any); len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
}

func TestCreateUserHandler(t *testing.T) {
	t.Parallel()

	body := `{"name":"Alice","email":"alice@example.com","phone":"1234567890"}`

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "created", want: http.StatusCreated},
		{name: "invalid", err: domain.ErrInvalidEmailFormat, want: http.StatusBadRequest},
		{name: "duplicate", err: app.ErrEmailTaken, want: http.StatusConflict},
		{name: "store", err: errors.New("down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := userServer(httpecho.UserHandlerDeps{CreateUser: &fakeCreateUserUseCase{err: tt.err}})
			rec := serve(s, http.MethodPost, "/api/users/", strings.NewReader(body), "application/json")
			expectStatus(t, rec, tt.want)

			if tt.want == http.StatusCreated {
				got := decode(t, rec)
				if got["userId"] != aliceID {
					t.Fatalf("unexpected userId: %#v", got["userId"])
				}
			}
		})
	}
}

func TestDeleteUserHandler(t *testing.T) {
	t.Parallel()

	s := userServer(httpecho.UserHandlerDeps{})
	rec := serve(s, http.MethodDelete, "/api/users/"+aliceID, nil, "")
	expectStatus(t, rec, http.StatusOK)

	s = userServer(httpecho.UserHandlerDeps{DeleteUser: &fakeDeleteUserUseCase{err: app.ErrUserNotFound}})
	rec = serve(s, http.MethodDelete, "/api/users/"+aliceID, nil, "")
	expectStatus(t, rec, http.StatusNotFound)
}
