package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/weather-favourites/internal/config"
	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/session"
)

const cookieName = "weather.sid"

func newManager() *session.Manager {
	return session.NewManager(session.NewMemoryStore(), config.SessionConfig{
		Secret: "middleware-test-secret", TTL: time.Hour,
	})
}

// serve runs a single request through LoadSession, the optional extra
// middleware and a handler that echoes the resolved user.
func serve(t *testing.T, resolver SessionResolver, cookie string, extra ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	mws := append([]echo.MiddlewareFunc{LoadSession(resolver, cookieName, logging.Discard())}, extra...)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, userID(c)+"|"+SessionToken(c))
	}, mws...)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoadSession(t *testing.T) {
	mgr := newManager()
	_, tok, err := mgr.Start(context.Background(), "user-1", "a@b.co")
	require.NoError(t, err)

	rec := serve(t, mgr, tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1|"+tok.Token, rec.Body.String())

	rec = serve(t, mgr, "")
	assert.Equal(t, "guest|", rec.Body.String())

	rec = serve(t, mgr, "tampered")
	assert.Equal(t, "guest|tampered", rec.Body.String())
}

type brokenResolver struct{}

func (brokenResolver) Resolve(context.Context, string) (session.Session, error) {
	return session.Session{}, errors.New("redis down")
}

func TestLoadSession_StoreFailureIsAnonymous(t *testing.T) {
	rec := serve(t, brokenResolver{}, "some-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest|some-token", rec.Body.String())
}

func TestRequireSession(t *testing.T) {
	mgr := newManager()
	_, tok, err := mgr.Start(context.Background(), "user-2", "b@b.co")
	require.NoError(t, err)

	rec := serve(t, mgr, tok.Token, RequireSession())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, mgr, "", RequireSession())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"You are not permitted to perform this action. Please log in."}`, rec.Body.String())

	require.NoError(t, mgr.Destroy(context.Background(), tok.Token))
	rec = serve(t, mgr, tok.Token, RequireSession())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewJSON(&buf, "debug")))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/boom", func(c echo.Context) error { return errors.New("kaboom") })

	for _, path := range []string{"/ok", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := buf.String()
	assert.Contains(t, out, `"uri":"/ok"`)
	assert.Contains(t, out, `"status":204`)
	assert.Contains(t, out, `"uri":"/boom"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"user":"guest"`)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "INFO", level(200).String())
	assert.Equal(t, "WARN", level(404).String())
	assert.Equal(t, "ERROR", level(503).String())
}
