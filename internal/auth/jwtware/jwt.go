// Package jwtware gates protected routes behind bearer-token
// authentication. Each request moves through the states
// unauthenticated -> verifying -> authenticated | rejected; the
// terminal state is per request and nothing is retained across
// requests.
package jwtware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// ErrJWTMissingOrMalformed covers a missing Authorization header or a
// scheme that is not the configured bearer scheme.
var ErrJWTMissingOrMalformed = goerrors.New("missing or malformed JWT", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// TokenValidator validates raw tokens. Mirrors the auth package
// TokenService.Validate surface so this package stays self contained.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the slice of validated claims the gate needs.
type AuthClaims interface {
	Subject() string
	UserID() string
}

// Identity mirrors the auth package identity attached to the request.
type Identity interface {
	ID() string
	Username() string
	Email() string
}

// IdentityResolver resolves a token subject to the current user record.
// The gate calls it on every request so authorization always reflects
// current store state; a deleted user's token stops resolving here.
type IdentityResolver func(ctx context.Context, subject string) (Identity, error)

type Config struct {
	// Filter skips the gate when it returns true.
	Filter func(*fiber.Ctx) bool
	// SuccessHandler runs after the identity is attached. Defaults to
	// passing the request on.
	SuccessHandler fiber.Handler
	// ErrorHandler translates gate failures to HTTP. No failure is
	// allowed to propagate past the gate unhandled.
	ErrorHandler func(*fiber.Ctx, error) error
	// TokenValidator is required for token validation.
	TokenValidator TokenValidator
	// IdentityResolver is optional; when set, the resolved identity is
	// stored under IdentityKey.
	IdentityResolver IdentityResolver
	// ContextKey is the locals key for the validated claims.
	ContextKey string
	// IdentityKey is the locals key for the resolved identity.
	IdentityKey string
	// AuthScheme is the expected Authorization scheme.
	AuthScheme string
}

const (
	defaultContextKey  = "claims"
	defaultIdentityKey = "identity"
	defaultAuthScheme  = "Bearer"
)

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = defaultContextKey
	}
	if cfg.IdentityKey == "" {
		cfg.IdentityKey = defaultIdentityKey
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = defaultAuthScheme
	}
	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "unauthorized"})
		}
	}

	return cfg
}

// New returns the gate middleware. TokenValidator must be set.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	if cfg.TokenValidator == nil {
		panic("jwtware: TokenValidator is required")
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := TokenFromHeader(c, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.IdentityResolver != nil {
			identity, err := cfg.IdentityResolver(c.UserContext(), claims.Subject())
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}
			c.Locals(cfg.IdentityKey, identity)
		}

		return cfg.SuccessHandler(c)
	}
}

// TokenFromHeader extracts the raw token from the Authorization header.
func TokenFromHeader(c *fiber.Ctx, scheme string) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrJWTMissingOrMalformed
	}

	prefix := scheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrJWTMissingOrMalformed
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrJWTMissingOrMalformed
	}

	return token, nil
}

// ClaimsFromContext returns the validated claims the gate stored.
func ClaimsFromContext(c *fiber.Ctx, key string) (AuthClaims, bool) {
	if key == "" {
		key = defaultContextKey
	}
	claims, ok := c.Locals(key).(AuthClaims)
	return claims, ok
}

// IdentityFromContext returns the resolved identity the gate stored.
func IdentityFromContext(c *fiber.Ctx, key string) (Identity, bool) {
	if key == "" {
		key = defaultIdentityKey
	}
	identity, ok := c.Locals(key).(Identity)
	return identity, ok
}
