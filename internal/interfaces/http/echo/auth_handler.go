package echo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mohammadpnp/user-pipeline/internal/application/auth"
)

type Authenticator interface {
	Login(ctx context.Context, in auth.LoginInput) (auth.LoginOutput, error)
	Check(ctx context.Context, token string) (string, bool)
	Logout(ctx context.Context, token string)
}

type AuthHandler struct {
	auth       Authenticator
	cookieName string
	ttl        time.Duration
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUser struct {
	Email string `json:"email"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    sessionUser `json:"user"`
}

type checkResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user,omitempty"`
}

func NewAuthHandler(authenticator Authenticator, cookieName string, ttl time.Duration) *AuthHandler {
	if cookieName == "" {
		cookieName = "sid"
	}
	return &AuthHandler{auth: authenticator, cookieName: cookieName, ttl: ttl}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	out, err := h.auth.Login(c.Request().Context(), auth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return fail(c, http.StatusUnauthorized, "Invalid email or password")
		}
		return fail(c, http.StatusServiceUnavailable, err.Error())
	}

	h.setCookie(c, out.Token, h.ttl)
	return c.JSON(http.StatusOK, loginResponse{Success: true, Message: "Login successful", User: sessionUser{Email: out.Email}})
}

func (h *AuthHandler) Check(c echo.Context) error {
	email, ok := h.auth.Check(c.Request().Context(), h.token(c))
	if !ok {
		return c.JSON(http.StatusOK, checkResponse{Authenticated: false})
	}
	return c.JSON(http.StatusOK, checkResponse{Authenticated: true, User: &sessionUser{Email: email}})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.auth.Logout(c.Request().Context(), h.token(c))
	h.setCookie(c, "", -1)
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logout successful"})
}

func (h *AuthHandler) token(c echo.Context) string {
	cookie, err := c.Cookie(h.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setCookie(c echo.Context, value string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl.Seconds())
	}
	c.SetCookie(cookie)
}
