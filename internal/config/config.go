package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables

	"github.com/joho/godotenv" // optional .env file support for local development
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets and database coordinates are required;
// everything else falls back to a development default.
type Config struct {
	Env        string // application environment (e.g. "dev", "prod")
	Port       string // HTTP port to listen on
	LogLevel   string // debug | info | warn | error
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	BcryptCost int    // bcrypt cost for password hashing

	// CORSOrigins lists browser origins allowed to call the API with
	// credentials.  Empty disables the CORS middleware.
	CORSOrigins []string

	// FavouritesRequireAuth places the favourites routes behind the session
	// guard.  Owner ids stay caller-supplied either way.
	FavouritesRequireAuth bool

	Session SessionConfig
	Weather WeatherConfig
	Events  EventsConfig
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// Load reads configuration values from the process environment, after
// merging an optional .env file.  Required variables are enforced by must()
// and missing values cause the program to exit with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}
	return Config{
		Env:                   envStr("APP_ENV", "dev"),
		Port:                  envStr("APP_PORT", "1337"),
		LogLevel:              envStr("LOG_LEVEL", "info"),
		DBUser:                must("DB_USER"),
		DBPass:                os.Getenv("DB_PASS"), // empty allowed
		DBHost:                must("DB_HOST"),
		DBPort:                envStr("DB_PORT", "3306"),
		DBName:                must("DB_NAME"),
		BcryptCost:            envInt("BCRYPT_COST", 10),
		CORSOrigins:           envList("CORS_ORIGINS", "http://localhost:3000"),
		FavouritesRequireAuth: envBool("FAVOURITES_REQUIRE_AUTH", false),
		Session:               LoadSessionConfig(),
		Weather:               LoadWeatherConfig(),
		Events:                LoadEventsConfig(),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
