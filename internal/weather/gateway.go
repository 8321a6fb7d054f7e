// Package weather talks to the Open-Meteo forecast and geocoding APIs.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/iliyamo/weather-favourites/internal/config"
)

var (
	ErrNotFound = errors.New("city not found")
	ErrUpstream = errors.New("weather provider unavailable")
)

// Location is the first geocoding match for a place name.
type Location struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
}

// Conditions are the current readings at a coordinate.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	CloudCover  float64 `json:"cloudCover"`
	Condition   string  `json:"condition"`
}

// Gateway issues single, unretried requests.  Both endpoints share one
// circuit breaker since they live with the same provider.
type Gateway struct {
	client       *http.Client
	forecastURL  string
	geocodingURL string
	circuit      *gobreaker.CircuitBreaker
}

func NewGateway(client *http.Client, cfg config.WeatherConfig) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &Gateway{
		client:       client,
		forecastURL:  cfg.ForecastURL,
		geocodingURL: cfg.GeocodingURL,
		circuit:      cb,
	}
}

// Geocode resolves cityName to its first match.  No match is ErrNotFound.
func (g *Gateway) Geocode(ctx context.Context, cityName string) (Location, error) {
	q := url.Values{}
	q.Set("name", cityName)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := g.getJSON(ctx, g.geocodingURL, q, &payload); err != nil {
		return Location{}, err
	}
	if len(payload.Results) == 0 {
		return Location{}, ErrNotFound
	}
	r := payload.Results[0]
	return Location{City: r.Name, Latitude: r.Latitude, Longitude: r.Longitude, Country: r.Country}, nil
}

// Current fetches the current conditions at lat/lon.
func (g *Gateway) Current(ctx context.Context, lat, lon float64) (Conditions, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,cloud_cover,weather_code")
	q.Set("timezone", "auto")

	var payload struct {
		Current *struct {
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			CloudCover  float64 `json:"cloud_cover"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := g.getJSON(ctx, g.forecastURL, q, &payload); err != nil {
		return Conditions{}, err
	}
	if payload.Current == nil {
		return Conditions{}, fmt.Errorf("%w: response has no current block", ErrUpstream)
	}
	c := payload.Current
	return Conditions{
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
		CloudCover:  c.CloudCover,
		Condition:   Condition(c.WeatherCode),
	}, nil
}

// getJSON performs one GET through the breaker and decodes the body into out.
// Every failure is reported as ErrUpstream.
func (g *Gateway) getJSON(ctx context.Context, base string, q url.Values, out any) error {
	body, err := g.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}
