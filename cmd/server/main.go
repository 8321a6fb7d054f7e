package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/weather-favourites/internal/config"
	"github.com/iliyamo/weather-favourites/internal/database"
	"github.com/iliyamo/weather-favourites/internal/handler"
	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/middleware"
	"github.com/iliyamo/weather-favourites/internal/queue"
	"github.com/iliyamo/weather-favourites/internal/repository"
	"github.com/iliyamo/weather-favourites/internal/router"
	"github.com/iliyamo/weather-favourites/internal/service"
	"github.com/iliyamo/weather-favourites/internal/session"
	"github.com/iliyamo/weather-favourites/internal/weather"
)

func main() {
	cfg := config.Load()
	log := logging.NewJSON(os.Stdout, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error(ctx, "open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Error(ctx, "migrate database", "err", err)
		os.Exit(1)
	}

	var store session.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.Session.Prefix)
		log.Info(ctx, "session store: redis")
	} else {
		mem := session.NewMemoryStore()
		if err := mem.StartSweeper(cfg.Session.SweepInterval); err != nil {
			log.Error(ctx, "start session sweeper", "err", err)
			os.Exit(1)
		}
		defer mem.StopSweeper()
		store = mem
		log.Warn(ctx, "session store: in-memory, sessions are lost on restart")
	}
	sessions := session.NewManager(store, cfg.Session)

	var events service.Publisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		pub := queue.NewAMQPPublisher(cfg.Events)
		defer pub.Close()
		events = pub
		if cfg.Events.ConsumerEnabled {
			go queue.NewConsumer(cfg.Events, log.With("component", "event-consumer")).Run(ctx)
		}
	}

	auth := service.NewAuthService(repository.NewUserRepo(db), sessions, cfg.BcryptCost, events, log)
	favs := service.NewFavouriteService(repository.NewFavouriteRepo(db), events, log)
	gw := weather.NewGateway(&http.Client{Timeout: cfg.Weather.HTTPTimeout}, cfg.Weather)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
			AllowCredentials: true,
		}))
	}
	e.Use(middleware.LoadSession(sessions, cfg.Session.CookieName, log))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, handler.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.IsProd(),
	}, log))
	router.RegisterFavourites(e, handler.NewFavouriteHandler(favs, log), cfg.FavouritesRequireAuth)
	router.RegisterWeather(e, handler.NewWeatherHandler(gw, log))

	addr := ":" + cfg.Port
	go func() {
		log.Info(ctx, "listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "shutdown", "err", err)
	}
}
