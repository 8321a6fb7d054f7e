// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-favourites/internal/handler"
	"github.com/iliyamo/weather-favourites/internal/middleware"
)

// RegisterRoutes registers routes that need no session.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the /api/auth endpoints.  They read the session
// loaded by middleware.LoadSession but none of them require one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me)
}

// RegisterFavourites registers /api/favourites.  With requireAuth the routes
// sit behind RequireSession; the owner id is still taken from the request.
func RegisterFavourites(e *echo.Echo, f *handler.FavouriteHandler, requireAuth bool) {
	var mws []echo.MiddlewareFunc
	if requireAuth {
		mws = append(mws, middleware.RequireSession())
	}
	g := e.Group("/api/favourites", mws...)
	g.POST("", f.Create)
	g.GET("", f.List)
	g.DELETE("/:id", f.Delete)
}

// RegisterWeather registers the geocoding and current-weather lookups.
func RegisterWeather(e *echo.Echo, w *handler.WeatherHandler) {
	e.POST("/api/geocode", w.Geocode)
	e.GET("/api/weather", w.Current)
}
