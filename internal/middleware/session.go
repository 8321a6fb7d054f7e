package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/session"
)

// SessionResolver is the part of session.Manager the middleware needs.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Session, error)
}

// LoadSession resolves the session cookie, if any, and stores the session
// on the context.  It never rejects a request; RequireSession does that.
func LoadSession(sessions SessionResolver, cookieName string, log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(cookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}
			c.Set(tokenKey, ck.Value)

			s, err := sessions.Resolve(c.Request().Context(), ck.Value)
			switch {
			case err == nil:
				c.Set(sessionKey, &s)
			case errors.Is(err, session.ErrNoSession):
			default:
				// Store outage: treat the request as anonymous.
				log.Error(c.Request().Context(), "resolve session failed", "err", err)
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests without an authenticated session.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s := CurrentSession(c); s == nil || s.UserID == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "You are not permitted to perform this action. Please log in.",
				})
			}
			return next(c)
		}
	}
}
