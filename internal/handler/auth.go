package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/middleware"
	"github.com/iliyamo/weather-favourites/internal/model"
	"github.com/iliyamo/weather-favourites/internal/service"
	"github.com/iliyamo/weather-favourites/internal/session"
	"github.com/iliyamo/weather-favourites/internal/utils"
)

// Authenticator is implemented by *service.AuthService.
type Authenticator interface {
	Register(ctx context.Context, in service.RegisterInput) (model.User, utils.SessionToken, error)
	Login(ctx context.Context, in service.LoginInput) (model.User, utils.SessionToken, error)
	Me(ctx context.Context, sess *session.Session) (model.User, error)
	Logout(ctx context.Context, token string)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth   Authenticator
	Cookie CookieOptions
	Log    logging.Logger
}

func NewAuthHandler(auth Authenticator, cookie CookieOptions, log logging.Logger) *AuthHandler {
	if auth == nil || log == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: auth, Cookie: cookie, Log: log}
}

type userResp struct {
	Message string     `json:"message,omitempty"`
	User    model.User `json:"user"`
}

// Register creates the account and logs the client in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body.")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, tok, err := h.Auth.Register(ctx, req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return errorJSON(c, http.StatusBadRequest, ve.Msg)
		case errors.Is(err, service.ErrDuplicateEmail):
			return errorJSON(c, http.StatusConflict, "Email address is already taken.")
		}
		h.Log.Error(ctx, "register failed", "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to register user.")
	}

	h.replaceSession(c, tok)
	return c.JSON(http.StatusCreated, userResp{Message: "User registered and logged in successfully.", User: u})
}

// Login verifies credentials and starts a fresh session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body.")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, tok, err := h.Auth.Login(ctx, req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return errorJSON(c, http.StatusBadRequest, ve.Msg)
		case errors.Is(err, service.ErrInvalidCredentials):
			return errorJSON(c, http.StatusUnauthorized, "Invalid email or password.")
		}
		h.Log.Error(ctx, "login failed", "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to login.")
	}

	h.replaceSession(c, tok)
	return c.JSON(http.StatusOK, userResp{Message: "Login successful.", User: u})
}

// Logout always succeeds; the message says whether there was a session.
func (h *AuthHandler) Logout(c echo.Context) error {
	// The token is destroyed even when it did not resolve, since a store
	// outage leaves the request anonymous while the record survives.
	if token := middleware.SessionToken(c); token != "" {
		ctx, cancel := requestCtx(c)
		defer cancel()
		h.Auth.Logout(ctx, token)
		h.Cookie.clear(c)
	}
	if middleware.CurrentSession(c) == nil {
		return messageJSON(c, http.StatusOK, "You are not logged in.")
	}
	return messageJSON(c, http.StatusOK, "Logout successful.")
}

// Me returns the user behind the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return errorJSON(c, http.StatusUnauthorized, "Not authenticated. No active session.")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Auth.Me(ctx, sess)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			h.Cookie.clear(c)
			return errorJSON(c, http.StatusUnauthorized, "User not found for current session. Session terminated.")
		}
		h.Log.Error(ctx, "load current user failed", "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to retrieve user details.")
	}
	return c.JSON(http.StatusOK, userResp{User: u})
}

// replaceSession drops any session the client already had, then sets the
// cookie for tok.
func (h *AuthHandler) replaceSession(c echo.Context, tok utils.SessionToken) {
	if old := middleware.SessionToken(c); old != "" && old != tok.Token {
		h.Auth.Logout(c.Request().Context(), old)
	}
	h.Cookie.set(c, tok)
}
