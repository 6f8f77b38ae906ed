// Package config loads runtime settings from the environment. The
// signing key has no default on purpose: it must be injected, never
// compiled in.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// DefaultTokenExpirationHours is 7 days, the fixed token lifetime.
	DefaultTokenExpirationHours = 7 * 24

	defaultHTTPAddr = ":8080"
	defaultDSN      = "file:flixandchill.db"
	defaultIssuer   = "flixandchill"
)

type Config struct {
	HTTPAddr        string
	DSN             string
	SigningKey      string
	TokenExpiration int // hours
	Issuer          string
	Audience        []string
	CORSOrigins     []string
	Debug           bool
}

// Load reads the environment. It fails when AUTH_SIGNING_KEY is unset
// or blank so a server can never start with a default secret.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:        envOr("HTTP_ADDR", defaultHTTPAddr),
		DSN:             envOr("DB_DSN", defaultDSN),
		SigningKey:      strings.TrimSpace(os.Getenv("AUTH_SIGNING_KEY")),
		TokenExpiration: DefaultTokenExpirationHours,
		Issuer:          envOr("AUTH_ISSUER", defaultIssuer),
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("AUTH_SIGNING_KEY must be set", errors.CategoryValidation).
			WithTextCode("CONFIG_MISSING_SIGNING_KEY")
	}

	if raw := os.Getenv("TOKEN_EXPIRATION_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, errors.New("TOKEN_EXPIRATION_HOURS must be a positive integer", errors.CategoryValidation).
				WithMetadata(map[string]any{"value": raw})
		}
		cfg.TokenExpiration = hours
	}

	if raw := os.Getenv("AUTH_AUDIENCE"); raw != "" {
		cfg.Audience = splitList(raw)
	}

	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}

	if raw := os.Getenv("DEBUG"); raw != "" {
		cfg.Debug, _ = strconv.ParseBool(raw)
	}

	return cfg, nil
}

// The getters below satisfy the auth package Config interface.

func (c *Config) GetSigningKey() string   { return c.SigningKey }
func (c *Config) GetTokenExpiration() int { return c.TokenExpiration }
func (c *Config) GetIssuer() string       { return c.Issuer }
func (c *Config) GetAudience() []string   { return c.Audience }
func (c *Config) GetContextKey() string   { return "claims" }
func (c *Config) GetAuthScheme() string   { return "Bearer" }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetDSN() string           { return c.DSN }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
