package jwtware_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flixandchill/backend/internal/auth/jwtware"
)

type stubClaims struct {
	subject string
	userID  string
}

func (s stubClaims) Subject() string { return s.subject }
func (s stubClaims) UserID() string  { return s.userID }

type stubValidator struct {
	claims jwtware.AuthClaims
	err    error
	calls  int
	seen   string
}

func (s *stubValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	s.calls++
	s.seen = tokenString
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubIdentity struct {
	id       string
	username string
	email    string
}

func (s stubIdentity) ID() string       { return s.id }
func (s stubIdentity) Username() string { return s.username }
func (s stubIdentity) Email() string    { return s.email }

func newGatedApp(cfg jwtware.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", jwtware.New(cfg), func(c *fiber.Ctx) error {
		return c.SendString("through")
	})
	return app
}

func TestGate_MissingOrMalformedHeader(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "alice"}}
	app := newGatedApp(jwtware.Config{TokenValidator: validator})

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "No authorization header",
			header: "",
		},
		{
			name:   "Wrong scheme",
			header: "Basic abc123",
		},
		{
			name:   "Scheme without token",
			header: "Bearer ",
		},
		{
			name:   "Bare token without scheme",
			header: "sometoken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		})
	}

	// the validator never sees a request the header check rejects
	assert.Equal(t, 0, validator.calls)
}

func TestGate_ValidToken(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "alice", userID: "record-1"}}

	var gotClaims jwtware.AuthClaims
	var gotIdentity jwtware.Identity

	app := fiber.New()
	app.Get("/protected", jwtware.New(jwtware.Config{
		TokenValidator: validator,
		IdentityResolver: func(ctx context.Context, subject string) (jwtware.Identity, error) {
			return stubIdentity{id: "record-1", username: subject}, nil
		},
	}), func(c *fiber.Ctx) error {
		gotClaims, _ = jwtware.ClaimsFromContext(c, "")
		gotIdentity, _ = jwtware.IdentityFromContext(c, "")
		return c.SendString("through")
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "through", string(body))

	assert.Equal(t, "good-token", validator.seen)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "alice", gotClaims.Subject())
	require.NotNil(t, gotIdentity)
	assert.Equal(t, "alice", gotIdentity.Username())
}

func TestGate_InvalidToken(t *testing.T) {
	validator := &stubValidator{
		err: goerrors.New("token is malformed", goerrors.CategoryAuth),
	}
	app := newGatedApp(jwtware.Config{TokenValidator: validator})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer bad-token")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, 1, validator.calls)
}

func TestGate_ResolverFailureRejects(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "alice"}}

	app := newGatedApp(jwtware.Config{
		TokenValidator: validator,
		IdentityResolver: func(ctx context.Context, subject string) (jwtware.Identity, error) {
			// token is fine but the record is gone
			return nil, goerrors.New("identity not found", goerrors.CategoryNotFound)
		},
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestGate_ErrorHandlerReceivesGateError(t *testing.T) {
	var seen error
	app := newGatedApp(jwtware.Config{
		TokenValidator: &stubValidator{claims: stubClaims{subject: "alice"}},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			seen = err
			return c.SendStatus(fiber.StatusTeapot)
		},
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, res.StatusCode)
	assert.ErrorIs(t, seen, jwtware.ErrJWTMissingOrMalformed)
}

func TestGate_FilterSkipsGate(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "alice"}}

	app := newGatedApp(jwtware.Config{
		TokenValidator: validator,
		Filter: func(c *fiber.Ctx) bool {
			return c.Query("skip") == "1"
		},
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected?skip=1", nil)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, 0, validator.calls)
}
