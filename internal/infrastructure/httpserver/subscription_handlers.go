package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lettermark/newsletter/internal/core/domain/subscription"
	"github.com/lettermark/newsletter/internal/core/ports"
)

// subscribe handles the signup form. Validation failures surface their
// message; storage and delivery failures stay opaque to the caller.
func (s *Server) subscribe(c echo.Context) error {
	name := c.FormValue("name")
	email := c.FormValue("email")

	_, err := s.subscriptionSvc.Subscribe(c.Request().Context(), name, email)
	if err != nil {
		if kind, ok := subscription.KindOf(err); ok && kind == subscription.FailureValidation {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.NoContent(http.StatusOK)
}

// confirm redeems a confirmation token from the emailed link.
func (s *Server) confirm(c echo.Context) error {
	token := c.QueryParam("subscription_token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "subscription_token is required")
	}

	if err := s.confirmationSvc.Confirm(c.Request().Context(), token); err != nil {
		if errors.Is(err, ports.ErrTokenNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "unknown subscription token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.NoContent(http.StatusOK)
}
