// Package server exposes the movie catalog over HTTP. All routes other
// than registration, login, and the welcome banner sit behind the
// bearer-token gate.
package server

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	"github.com/flixandchill/backend/internal/auth"
	"github.com/flixandchill/backend/internal/auth/jwtware"
	"github.com/flixandchill/backend/internal/config"
	"github.com/flixandchill/backend/internal/store"
)

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	repo     store.RepositoryManager
	auther   auth.Authenticator
	provider auth.IdentityProvider
	logger   glog.Logger
}

func New(cfg *config.Config, repo store.RepositoryManager, auther auth.Authenticator, provider auth.IdentityProvider, lgr glog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		repo:     repo,
		auther:   auther,
		provider: provider,
		logger:   lgr,
	}

	s.app = fiber.New(fiber.Config{
		AppName:       "flixandchill",
		StrictRouting: false,
	})

	s.app.Use(logger.New())

	if origins := cfg.GetCORSOrigins(); len(origins) > 0 {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(origins, ","),
			AllowCredentials: true,
		}))
	} else {
		s.app.Use(cors.New())
	}

	s.registerRoutes()

	return s
}

// App exposes the fiber app, used by tests via app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.GetHTTPAddr())
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// protected builds the auth gate used by every route past the public
// surface. The identity resolver performs a fresh store lookup per
// request so revoked-by-deletion users are rejected immediately.
func (s *Server) protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator: tokenValidator{ts: s.auther.TokenService()},
		IdentityResolver: func(ctx context.Context, subject string) (jwtware.Identity, error) {
			identity, err := s.provider.FindIdentityByIdentifier(ctx, subject)
			if err != nil {
				return nil, err
			}
			return identity, nil
		},
		ErrorHandler: s.authErrorHandler,
		ContextKey:   s.cfg.GetContextKey(),
		AuthScheme:   s.cfg.GetAuthScheme(),
	})
}

// tokenValidator adapts auth.TokenService to the gate's local interface.
type tokenValidator struct {
	ts auth.TokenService
}

func (v tokenValidator) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := v.ts.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// authErrorHandler translates gate failures. Everything the gate can
// produce is a 401 except store failures, which stay 500.
func (s *Server) authErrorHandler(c *fiber.Ctx, err error) error {
	switch {
	case auth.IsTokenExpiredError(err):
		return respondMessage(c, fiber.StatusUnauthorized, "Token expired")
	case auth.IsMalformedError(err), goerrors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		return respondMessage(c, fiber.StatusUnauthorized, "Missing or invalid token")
	case goerrors.IsNotFound(err):
		// token subject no longer resolves to a user record
		return respondMessage(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryAuth {
		return respondMessage(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	s.logger.Error("auth gate failure", "error", err)
	return respondMessage(c, fiber.StatusInternalServerError, "Internal server error")
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// respondError maps structured errors from the repositories and
// handlers onto the API's status codes.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		s.logger.Error("unhandled error", "error", err)
		return respondMessage(c, fiber.StatusInternalServerError, "Internal server error")
	}

	switch richErr.Category {
	case goerrors.CategoryNotFound:
		return respondMessage(c, fiber.StatusNotFound, richErr.Message)
	case goerrors.CategoryValidation, goerrors.CategoryBadInput, goerrors.CategoryConflict:
		return respondMessage(c, fiber.StatusBadRequest, richErr.Message)
	case goerrors.CategoryRateLimit:
		return respondMessage(c, fiber.StatusTooManyRequests, richErr.Message)
	case goerrors.CategoryAuth:
		return respondMessage(c, fiber.StatusUnauthorized, richErr.Message)
	default:
		s.logger.Error("internal error", "error", err)
		return respondMessage(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
