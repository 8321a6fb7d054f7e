// Package client is a Go client for the weather favourites HTTP API.  It
// keeps the session cookie in a cookie jar so calls after Login or Register
// are authenticated.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/weather-favourites/internal/model"
	"github.com/iliyamo/weather-favourites/internal/weather"
)

const DefaultCookieName = "weather.sid"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
)

// APIError is a non-2xx response.  Message is the server's "error" or
// "message" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotAuthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// DuplicateError is returned by AddFavourite on 409.
type DuplicateError struct {
	Message  string
	Existing model.FavouriteLocation
}

func (e *DuplicateError) Error() string { return e.Message }

type Client struct {
	base       *url.URL
	http       *http.Client
	cookieName string
}

type Option func(*Client)

// WithHTTPClient replaces the transport.  A jar is attached if it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithCookieName(name string) Option {
	return func(c *Client) { c.cookieName = name }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 15 * time.Second}, cookieName: DefaultCookieName}
	for _, o := range opts {
		o(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// SessionToken is the current session cookie value, or "".
func (c *Client) SessionToken() string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == c.cookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken restores a token saved by an earlier run.
func (c *Client) SetSessionToken(token string) {
	ck := &http.Cookie{Name: c.cookieName, Value: token, Path: "/"}
	if token == "" {
		ck.MaxAge = -1
	}
	c.http.Jar.SetCookies(c.base, []*http.Cookie{ck})
}

type userEnvelope struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, email, password, fullName string) (model.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil,
		map[string]string{"email": email, "password": password, "fullName": fullName}, &out)
	return out.User, err
}

func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": email, "password": password}, &out)
	return out.User, err
}

// Logout returns the server's message.
func (c *Client) Logout(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, &out)
	return out.Message, err
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out)
	return out.User, err
}

// NewFavourite is the body of an add request.
type NewFavourite struct {
	OwnerID   string  `json:"userId"`
	CityName  string  `json:"cityName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
}

// AddFavourite returns *DuplicateError when the owner already has it.
func (c *Client) AddFavourite(ctx context.Context, f NewFavourite) (model.FavouriteLocation, error) {
	var out model.FavouriteLocation
	err := c.do(ctx, http.MethodPost, "/api/favourites", nil, f, &out)
	return out, err
}

func (c *Client) ListFavourites(ctx context.Context, ownerID string) ([]model.FavouriteLocation, error) {
	var out []model.FavouriteLocation
	err := c.do(ctx, http.MethodGet, "/api/favourites", url.Values{"userId": {ownerID}}, nil, &out)
	return out, err
}

func (c *Client) RemoveFavourite(ctx context.Context, id, ownerID string) error {
	return c.do(ctx, http.MethodDelete, "/api/favourites/"+url.PathEscape(id),
		url.Values{"userId": {ownerID}}, nil, nil)
}

func (c *Client) Geocode(ctx context.Context, city string) (weather.Location, error) {
	var out weather.Location
	err := c.do(ctx, http.MethodPost, "/api/geocode", nil, map[string]string{"cityName": city}, &out)
	return out, err
}

func (c *Client) Weather(ctx context.Context, lat, lon float64) (weather.Conditions, error) {
	var out weather.Conditions
	q := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	err := c.do(ctx, http.MethodGet, "/api/weather", q, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	var env struct {
		Error     string                   `json:"error"`
		Message   string                   `json:"message"`
		Favourite *model.FavouriteLocation `json:"favourite"`
	}
	_ = json.Unmarshal(raw, &env)
	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	if status == http.StatusConflict && env.Favourite != nil {
		return &DuplicateError{Message: msg, Existing: *env.Favourite}
	}
	return &APIError{Status: status, Message: msg}
}
