package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/user-pipeline/internal/application/user"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

type UserHandler struct {
	getUser    app.GetUserByID
	listUsers  app.ListUsers
	createUser app.CreateUser
	deleteUser app.DeleteUser
}

type UserHandlerDeps struct {
	GetUser    app.GetUserByID
	ListUsers  app.ListUsers
	CreateUser app.CreateUser
	DeleteUser app.DeleteUser
}

type createUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
}

type listUsersResponse struct {
	Success bool             `json:"success"`
	Users   []app.UserOutput `json:"users"`
	Count   int              `json:"count"`
}

type userResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	UserID  string         `json:"userId,omitempty"`
	User    app.UserOutput `json:"user"`
}

func NewUserHandler(deps UserHandlerDeps) *UserHandler {
	return &UserHandler{
		getUser:    deps.GetUser,
		listUsers:  deps.ListUsers,
		createUser: deps.CreateUser,
		deleteUser: deps.DeleteUser,
	}
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	out, err := h.listUsers.Execute(c.Request().Context(), app.ListUsersInput{Search: c.QueryParam("search")})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, listUsersResponse{Success: true, Users: out.Users, Count: out.Count})
}

func (h *UserHandler) GetUserByID(c echo.Context) error {
	out, err := h.getUser.Execute(c.Request().Context(), app.GetUserByIDInput{
		ID: c.Param("id"),
	})
	if err != nil {
		return h.userError(c, err, "failed to get user")
	}

	return c.JSON(http.StatusOK, userResponse{Success: true, User: out})
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	out, err := h.createUser.Execute(c.Request().Context(), app.CreateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Gender: req.Gender,
	})
	if err != nil {
		switch {
		case domain.IsValidationError(err):
			return fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrEmailTaken):
			return fail(c, http.StatusConflict, "Email already exists")
		default:
			return fail(c, http.StatusInternalServerError, "failed to create user")
		}
	}

	return c.JSON(http.StatusCreated, userResponse{Success: true, Message: "User created successfully", UserID: out.ID, User: out})
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.deleteUser.Execute(c.Request().Context(), app.DeleteUserInput{ID: c.Param("id")}); err != nil {
		return h.userError(c, err, "failed to delete user")
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "User deleted successfully"})
}

func (h *UserHandler) userError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, app.ErrInvalidUserID):
		return fail(c, http.StatusBadRequest, "id must be a valid UUID")
	case errors.Is(err, app.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "User not found")
	default:
		return fail(c, http.StatusInternalServerError, fallback)
	}
}
