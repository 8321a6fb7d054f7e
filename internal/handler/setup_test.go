package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/weather-favourites/internal/config"
	"github.com/iliyamo/weather-favourites/internal/handler"
	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/middleware"
	"github.com/iliyamo/weather-favourites/internal/model"
	"github.com/iliyamo/weather-favourites/internal/queue"
	"github.com/iliyamo/weather-favourites/internal/repository"
	"github.com/iliyamo/weather-favourites/internal/router"
	"github.com/iliyamo/weather-favourites/internal/service"
	"github.com/iliyamo/weather-favourites/internal/session"
	"github.com/iliyamo/weather-favourites/internal/weather"
)

const cookieName = "weather.sid"

type memUsers struct {
	mu   sync.Mutex
	rows map[string]model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email {
			return r, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.rows[id]; ok {
		return u, nil
	}
	return model.User{}, repository.ErrNotFound
}

type memFavs struct {
	mu   sync.Mutex
	rows []model.FavouriteLocation
}

func (m *memFavs) Insert(_ context.Context, f *model.FavouriteLocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OwnerID == f.OwnerID && r.Latitude == f.Latitude && r.Longitude == f.Longitude {
			return repository.ErrDuplicateFavourite
		}
	}
	f.ID = uuid.NewString()
	f.CreatedAt = time.Now().UTC()
	m.rows = append(m.rows, *f)
	return nil
}

func (m *memFavs) FindByOwnerAndCoords(_ context.Context, owner string, lat, lon float64) (model.FavouriteLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OwnerID == owner && r.Latitude == lat && r.Longitude == lon {
			return r, nil
		}
	}
	return model.FavouriteLocation{}, repository.ErrNotFound
}

func (m *memFavs) ListByOwner(_ context.Context, owner string) ([]model.FavouriteLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.FavouriteLocation{}
	for _, r := range m.rows {
		if r.OwnerID == owner {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memFavs) DeleteByIDAndOwner(_ context.Context, id, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id && r.OwnerID == owner {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type stubWeather struct {
	loc  weather.Location
	cond weather.Conditions
	err  error
}

func (s stubWeather) Geocode(context.Context, string) (weather.Location, error) { return s.loc, s.err }

func (s stubWeather) Current(context.Context, float64, float64) (weather.Conditions, error) {
	return s.cond, s.err
}

type app struct {
	e     *echo.Echo
	users *memUsers
	favs  *memFavs
}

type appOpts struct {
	weather     handler.WeatherSource
	requireAuth bool
	store       session.Store
}

// flakyStore fails Load on demand while Save and Delete keep working.
type flakyStore struct {
	*session.MemoryStore
	mu       sync.Mutex
	loadDown bool
}

func (s *flakyStore) setLoadDown(down bool) {
	s.mu.Lock()
	s.loadDown = down
	s.mu.Unlock()
}

func (s *flakyStore) Load(ctx context.Context, id string) (session.Session, error) {
	s.mu.Lock()
	down := s.loadDown
	s.mu.Unlock()
	if down {
		return session.Session{}, errors.New("store unavailable")
	}
	return s.MemoryStore.Load(ctx, id)
}

func newApp(t *testing.T, opts appOpts) *app {
	t.Helper()
	log := logging.Discard()
	users := &memUsers{rows: map[string]model.User{}}
	favs := &memFavs{}
	if opts.store == nil {
		opts.store = session.NewMemoryStore()
	}
	mgr := session.NewManager(opts.store, config.SessionConfig{
		CookieName: cookieName, Secret: "handler-test-secret", TTL: time.Hour,
	})
	events := queue.NopPublisher{}

	if opts.weather == nil {
		opts.weather = stubWeather{}
	}

	e := echo.New()
	e.Use(middleware.LoadSession(mgr, cookieName, log))
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(
		service.NewAuthService(users, mgr, bcrypt.MinCost, events, log),
		handler.CookieOptions{Name: cookieName}, log))
	router.RegisterFavourites(e, handler.NewFavouriteHandler(
		service.NewFavouriteService(favs, events, log), log), opts.requireAuth)
	router.RegisterWeather(e, handler.NewWeatherHandler(opts.weather, log))
	return &app{e: e, users: users, favs: favs}
}

// do sends a request with an optional JSON body and session cookie.
func (a *app) do(t *testing.T, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
