package echo

import (
	"github.com/labstack/echo/v4"
)

// Every body carries a success verdict; failures add a human-readable message.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Success: false, Message: message})
}

func detailsRequested(c echo.Context) bool {
	switch c.QueryParam("details") {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
