package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/weather-favourites/internal/cli"
	"github.com/iliyamo/weather-favourites/internal/client"
	"github.com/iliyamo/weather-favourites/internal/identity"
)

func main() {
	_ = godotenv.Load()

	defaultAPI := os.Getenv("WEATHER_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:1337"
	}
	defaultState, err := identity.DefaultStatePath()
	if err != nil {
		defaultState = ".weather-state.json"
	}

	apiURL := flag.String("api", defaultAPI, "base URL of the weather API")
	statePath := flag.String("state", defaultState, "file holding the guest id and session")
	cookie := flag.String("cookie", client.DefaultCookieName, "session cookie name")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: weather [-api URL] [-state FILE] <command> [args]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	api, err := client.New(*apiURL, client.WithCookieName(*cookie))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := cli.NewApp(api, identity.NewFileStorage(*statePath), os.Stdin, os.Stdout, os.Stderr)
	code := app.Run(ctx, flag.Args())
	stop()
	os.Exit(code)
}
