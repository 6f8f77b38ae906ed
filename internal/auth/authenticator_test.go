package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flixandchill/backend/internal/auth"
)

type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if identity := args.Get(0); identity != nil {
		return identity.(auth.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if identity := args.Get(0); identity != nil {
		return identity.(auth.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

type testConfig struct {
	signingKey      string
	tokenExpiration int
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c testConfig) GetIssuer() string       { return "flixandchill" }
func (c testConfig) GetAudience() []string   { return nil }
func (c testConfig) GetContextKey() string   { return "claims" }
func (c testConfig) GetAuthScheme() string   { return "Bearer" }

func newTestConfig() testConfig {
	return testConfig{signingKey: string(signingKey), tokenExpiration: 168}
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()
	identity := testIdentity{id: "record-1", username: "alice", email: "alice@example.com"}

	t.Run("Valid credentials mint a token", func(t *testing.T) {
		provider := new(mockIdentityProvider)
		provider.On("VerifyIdentity", ctx, "alice", "secret").Return(identity, nil)

		auther := auth.NewAuthenticator(provider, newTestConfig())

		token, err := auther.Login(ctx, "alice", "secret")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := auther.TokenService().Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject())
		assert.Equal(t, "record-1", claims.UserID())
	})

	t.Run("Verification failures yield no token", func(t *testing.T) {
		provider := new(mockIdentityProvider)
		provider.On("VerifyIdentity", ctx, "alice", "wrong").
			Return(nil, auth.ErrMismatchedHashAndPassword)

		auther := auth.NewAuthenticator(provider, newTestConfig())

		token, err := auther.Login(ctx, "alice", "wrong")
		assert.Empty(t, token)
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})

	t.Run("Nil identity from provider", func(t *testing.T) {
		provider := new(mockIdentityProvider)
		provider.On("VerifyIdentity", ctx, "alice", "secret").Return(nil, nil)

		auther := auth.NewAuthenticator(provider, newTestConfig())

		token, err := auther.Login(ctx, "alice", "secret")
		assert.Empty(t, token)
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestAuther_IdentityFromToken(t *testing.T) {
	ctx := context.Background()
	identity := testIdentity{id: "record-1", username: "alice", email: "alice@example.com"}

	mintToken := func(t *testing.T, auther auth.Authenticator) string {
		t.Helper()
		token, err := auther.TokenService().Generate(identity)
		require.NoError(t, err)
		return token
	}

	t.Run("Valid token resolves the subject", func(t *testing.T) {
		provider := new(mockIdentityProvider)
		provider.On("FindIdentityByIdentifier", ctx, "alice").Return(identity, nil)

		auther := auth.NewAuthenticator(provider, newTestConfig())

		resolved, err := auther.IdentityFromToken(ctx, mintToken(t, auther))
		require.NoError(t, err)
		assert.Equal(t, "alice", resolved.Username())
		assert.Equal(t, "record-1", resolved.ID())
	})

	t.Run("Token for a deleted user stops resolving", func(t *testing.T) {
		provider := new(mockIdentityProvider)
		provider.On("FindIdentityByIdentifier", ctx, "alice").
			Return(nil, auth.ErrIdentityNotFound)

		auther := auth.NewAuthenticator(provider, newTestConfig())
		token := mintToken(t, auther)

		resolved, err := auther.IdentityFromToken(ctx, token)
		assert.Nil(t, resolved)
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})

	t.Run("Expired token is rejected before any lookup", func(t *testing.T) {
		provider := new(mockIdentityProvider)

		expiring := auth.NewAuthenticator(provider, testConfig{
			signingKey:      string(signingKey),
			tokenExpiration: -1,
		})

		resolved, err := expiring.IdentityFromToken(ctx, mintToken(t, expiring))
		assert.Nil(t, resolved)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)

		provider.AssertNotCalled(t, "FindIdentityByIdentifier", mock.Anything, mock.Anything)
	})

	t.Run("Tampered token is rejected", func(t *testing.T) {
		provider := new(mockIdentityProvider)
		auther := auth.NewAuthenticator(provider, newTestConfig())

		resolved, err := auther.IdentityFromToken(ctx, mintToken(t, auther)+"x")
		assert.Nil(t, resolved)
		assert.True(t, auth.IsMalformedError(err))

		provider.AssertNotCalled(t, "FindIdentityByIdentifier", mock.Anything, mock.Anything)
	})
}
