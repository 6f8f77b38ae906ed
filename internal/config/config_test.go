package config_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flixandchill/backend/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("AUTH_SIGNING_KEY", "a-signing-key")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.GetHTTPAddr())
		assert.Equal(t, "file:flixandchill.db", cfg.GetDSN())
		assert.Equal(t, "a-signing-key", cfg.GetSigningKey())
		assert.Equal(t, 168, cfg.GetTokenExpiration())
		assert.Equal(t, "flixandchill", cfg.GetIssuer())
		assert.Equal(t, "claims", cfg.GetContextKey())
		assert.Equal(t, "Bearer", cfg.GetAuthScheme())
		assert.Empty(t, cfg.GetAudience())
		assert.Empty(t, cfg.GetCORSOrigins())
		assert.False(t, cfg.Debug)
	})

	t.Run("Missing signing key", func(t *testing.T) {
		t.Setenv("AUTH_SIGNING_KEY", "")

		cfg, err := config.Load()
		assert.Nil(t, cfg)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, "CONFIG_MISSING_SIGNING_KEY", richErr.TextCode)
	})

	t.Run("Blank signing key", func(t *testing.T) {
		t.Setenv("AUTH_SIGNING_KEY", "   ")

		cfg, err := config.Load()
		assert.Nil(t, cfg)
		assert.Error(t, err)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("AUTH_SIGNING_KEY", "a-signing-key")
		t.Setenv("HTTP_ADDR", ":9090")
		t.Setenv("DB_DSN", "file:other.db")
		t.Setenv("TOKEN_EXPIRATION_HOURS", "24")
		t.Setenv("AUTH_ISSUER", "another-issuer")
		t.Setenv("AUTH_AUDIENCE", "web, mobile")
		t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")
		t.Setenv("DEBUG", "true")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.GetHTTPAddr())
		assert.Equal(t, "file:other.db", cfg.GetDSN())
		assert.Equal(t, 24, cfg.GetTokenExpiration())
		assert.Equal(t, "another-issuer", cfg.GetIssuer())
		assert.Equal(t, []string{"web", "mobile"}, cfg.GetAudience())
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.GetCORSOrigins())
		assert.True(t, cfg.Debug)
	})

	t.Run("Bad token expiration", func(t *testing.T) {
		t.Setenv("AUTH_SIGNING_KEY", "a-signing-key")

		for _, raw := range []string{"abc", "0", "-5"} {
			t.Setenv("TOKEN_EXPIRATION_HOURS", raw)

			cfg, err := config.Load()
			assert.Nil(t, cfg, "value %q should be rejected", raw)
			assert.Error(t, err)
		}
	})
}
