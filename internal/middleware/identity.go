package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-favourites/internal/session"
)

const (
	sessionKey = "session"
	tokenKey   = "session_token"
)

// CurrentSession returns the session LoadSession attached to c, or nil for
// anonymous requests.
func CurrentSession(c echo.Context) *session.Session {
	s, _ := c.Get(sessionKey).(*session.Session)
	return s
}

// SessionToken returns the raw cookie value LoadSession saw, even when it
// did not resolve to a live session.
func SessionToken(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}

// userID is the session's user id or "guest" for log lines.
func userID(c echo.Context) string {
	if s := CurrentSession(c); s != nil && s.UserID != "" {
		return s.UserID
	}
	return "guest"
}
