package main

import (
	"errors"
	"fmt"
	"net/http"

	"flix/internal/auth"
	"flix/internal/data"

	"github.com/labstack/echo/v4"
)

func (app *application) CustomRecover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					c.Response().Header().Set("Connection", "close")
					err = fmt.Errorf("%v", r)
				}
			}()
			return next(c)
		}
	}
}

// Authenticate resolves the request's bearer credentials to a user identity
// and stashes it in the request context. Requests carrying no Authorization
// header pass through as AnonymousUser; requests carrying a bad one are
// rejected before any handler runs.
func (app *application) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Add("Vary", "Authorization")

			if c.Request().Header.Get("Authorization") == "" {
				c.Set("user", data.AnonymousUser)
				return next(c)
			}

			user, err := app.bearer.Authenticate(c.Request().Context(), c.Request())
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrNoCredentials), errors.Is(err, auth.ErrInvalidToken):
					c.Response().Header().Set("WWW-Authenticate", "Bearer")
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication token")
				default:
					return err
				}
			}

			c.Set("user", user)
			return next(c)
		}
	}
}

func (app *application) RequireAuthenticatedUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get("user").(*data.User)
		if !ok || user.IsAnonymous() {
			return echo.NewHTTPError(http.StatusUnauthorized, "you must be authenticated to access this resource")
		}
		return next(c)
	}
}
