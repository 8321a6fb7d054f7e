package config

import "time"

// WeatherConfig points the gateway at the Open-Meteo endpoints.  The base
// URLs are overridable so tests and self-hosted mirrors can be used.
type WeatherConfig struct {
	ForecastURL  string
	GeocodingURL string
	HTTPTimeout  time.Duration
}

// LoadWeatherConfig reads WEATHER_* variables.
func LoadWeatherConfig() WeatherConfig {
	return WeatherConfig{
		ForecastURL:  envStr("WEATHER_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		GeocodingURL: envStr("WEATHER_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		HTTPTimeout:  envDur("WEATHER_HTTP_TIMEOUT", 10*time.Second),
	}
}
