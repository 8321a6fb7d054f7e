package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/model"
	"github.com/iliyamo/weather-favourites/internal/service"
)

// Favourites is implemented by *service.FavouriteService.
type Favourites interface {
	Add(ctx context.Context, in service.AddFavouriteInput) (model.FavouriteLocation, error)
	List(ctx context.Context, ownerID string) ([]model.FavouriteLocation, error)
	Remove(ctx context.Context, favouriteID, ownerID string) (string, error)
}

// FavouriteHandler serves /api/favourites.  These responses use a
// "message" key rather than "error", which the web client relies on.
type FavouriteHandler struct {
	Favs Favourites
	Log  logging.Logger
}

func NewFavouriteHandler(favs Favourites, log logging.Logger) *FavouriteHandler {
	if favs == nil || log == nil {
		panic("nil dependency passed to NewFavouriteHandler")
	}
	return &FavouriteHandler{Favs: favs, Log: log}
}

// Create adds a favourite.  A duplicate answers 409 with the stored record.
func (h *FavouriteHandler) Create(c echo.Context) error {
	var req service.AddFavouriteInput
	if err := c.Bind(&req); err != nil {
		return messageJSON(c, http.StatusBadRequest, "Invalid request body.")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	f, err := h.Favs.Add(ctx, req)
	if err != nil {
		var dup *service.DuplicateFavouriteError
		if errors.As(err, &dup) {
			return c.JSON(http.StatusConflict, echo.Map{
				"message":   "This location is already in your favourites.",
				"favourite": dup.Existing,
			})
		}
		return h.fail(ctx, c, "add favourite failed", err)
	}
	return c.JSON(http.StatusCreated, f)
}

// List returns ?userId's favourites as a JSON array.
func (h *FavouriteHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	favs, err := h.Favs.List(ctx, c.QueryParam("userId"))
	if err != nil {
		return h.fail(ctx, c, "list favourites failed", err)
	}
	return c.JSON(http.StatusOK, favs)
}

// Delete removes /:id if ?userId owns it.
func (h *FavouriteHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	id, err := h.Favs.Remove(ctx, c.Param("id"), c.QueryParam("userId"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return messageJSON(c, http.StatusNotFound, "Favourite not found for this user or it does not exist.")
		}
		return h.fail(ctx, c, "remove favourite failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Favourite removed successfully.", "id": id})
}

func (h *FavouriteHandler) fail(ctx context.Context, c echo.Context, what string, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return messageJSON(c, http.StatusBadRequest, ve.Msg)
	}
	h.Log.Error(ctx, what, "err", err)
	return messageJSON(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}
