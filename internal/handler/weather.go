package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/weather"
)

// WeatherSource is implemented by *weather.Gateway.
type WeatherSource interface {
	Geocode(ctx context.Context, cityName string) (weather.Location, error)
	Current(ctx context.Context, lat, lon float64) (weather.Conditions, error)
}

type WeatherHandler struct {
	Source WeatherSource
	Log    logging.Logger
}

func NewWeatherHandler(src WeatherSource, log logging.Logger) *WeatherHandler {
	if src == nil || log == nil {
		panic("nil dependency passed to NewWeatherHandler")
	}
	return &WeatherHandler{Source: src, Log: log}
}

type geocodeReq struct {
	CityName string `json:"cityName"`
}

// Geocode resolves a city name to coordinates.
func (h *WeatherHandler) Geocode(c echo.Context) error {
	var req geocodeReq
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body.")
	}
	name := strings.TrimSpace(req.CityName)
	if name == "" {
		return errorJSON(c, http.StatusBadRequest, "City name is required")
	}

	ctx := c.Request().Context()
	loc, err := h.Source.Geocode(ctx, name)
	if err != nil {
		if errors.Is(err, weather.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "City not found")
		}
		h.Log.Error(ctx, "geocode failed", "city", name, "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to geocode city")
	}
	return c.JSON(http.StatusOK, loc)
}

// Current returns the weather at ?latitude&longitude.
func (h *WeatherHandler) Current(c echo.Context) error {
	latRaw, lonRaw := c.QueryParam("latitude"), c.QueryParam("longitude")
	if latRaw == "" || lonRaw == "" {
		return errorJSON(c, http.StatusBadRequest, "Latitude and longitude are required")
	}
	lat, err1 := strconv.ParseFloat(latRaw, 64)
	lon, err2 := strconv.ParseFloat(lonRaw, 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return errorJSON(c, http.StatusBadRequest, "Latitude and longitude must be valid coordinates")
	}

	ctx := c.Request().Context()
	cond, err := h.Source.Current(ctx, lat, lon)
	if err != nil {
		h.Log.Error(ctx, "weather fetch failed", "lat", lat, "lon", lon, "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch weather data")
	}
	return c.JSON(http.StatusOK, cond)
}
