package user

import "errors"

var (
	ErrInvalidImportSource = errors.New("invalid import source")
	ErrImportUsers         = errors.New("failed to import users")
	ErrInvalidUserID       = errors.New("invalid user id")
	ErrUserNotFound        = errors.New("user not found")
	ErrGetUserByID         = errors.New("failed to get user by id")
	ErrListUsers           = errors.New("failed to list users")
	ErrCreateUser          = errors.New("failed to create user")
	ErrEmailTaken          = errors.New("email already exists")
	ErrDeleteUser          = errors.New("failed to delete user")
)
