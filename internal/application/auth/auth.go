// Package auth signs the configured administrator in and out.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAuthNotConfigured  = errors.New("admin credentials are not configured")
)

type SessionStore interface {
	Create(email string) string
	Get(token string) (string, bool)
	Delete(token string)
}

type Credentials struct {
	AdminEmail        string
	AdminPasswordHash string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	Token string
	Email string
}

type Service struct {
	creds    Credentials
	sessions SessionStore
}

func NewService(creds Credentials, sessions SessionStore) *Service {
	creds.AdminEmail = strings.ToLower(strings.TrimSpace(creds.AdminEmail))
	return &Service{creds: creds, sessions: sessions}
}

func (s *Service) Login(_ context.Context, in LoginInput) (LoginOutput, error) {
	if s.creds.AdminEmail == "" || s.creds.AdminPasswordHash == "" {
		return LoginOutput{}, ErrAuthNotConfigured
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.creds.AdminEmail)) == 1
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.creds.AdminPasswordHash), []byte(in.Password))
	if !emailOK || passwordErr != nil {
		return LoginOutput{}, ErrInvalidCredentials
	}

	return LoginOutput{Token: s.sessions.Create(email), Email: email}, nil
}

// Check resolves a session token and extends it.
func (s *Service) Check(_ context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return s.sessions.Get(token)
}

func (s *Service) Logout(_ context.Context, token string) {
	if token != "" {
		s.sessions.Delete(token)
	}
}
