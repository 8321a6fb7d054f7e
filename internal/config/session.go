package config

import (
	"log"
	"time"
)

// SessionConfig controls how server-side sessions are issued and stored.
// Secret signs the session cookie; TTL bounds both the cookie and the stored
// record.  Prefix namespaces session keys in Redis.  SweepInterval is only
// used by the in-memory fallback store to purge expired records.
type SessionConfig struct {
	CookieName    string
	Secret        string
	TTL           time.Duration
	Prefix        string
	SweepInterval time.Duration
}

// LoadSessionConfig reads SESSION_* variables.  SESSION_SECRET is required.
func LoadSessionConfig() SessionConfig {
	cfg := SessionConfig{
		CookieName:    envStr("SESSION_COOKIE", "weather.sid"),
		Secret:        must("SESSION_SECRET"),
		TTL:           envDur("SESSION_TTL", 24*time.Hour),
		Prefix:        envStr("SESSION_PREFIX", "sess"),
		SweepInterval: envDur("SESSION_SWEEP_INTERVAL", time.Minute),
	}
	if len(cfg.Secret) < 16 {
		log.Printf("config: SESSION_SECRET is shorter than 16 bytes")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.SweepInterval < time.Second {
		cfg.SweepInterval = time.Minute
	}
	return cfg
}
