// Package handler exposes the HTTP endpoints for accounts, favourites and
// weather lookups.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-favourites/internal/utils"
)

// dbTimeout bounds the storage work a single request may do.
const dbTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// CookieOptions describes the session cookie the auth endpoints write.
type CookieOptions struct {
	Name   string
	Secure bool
}

func (o CookieOptions) set(c echo.Context, tok utils.SessionToken) {
	c.SetCookie(&http.Cookie{
		Name:     o.Name,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		MaxAge:   int(time.Until(tok.Exp).Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

func messageJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}
