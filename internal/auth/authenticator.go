package auth

import (
	"context"
	"reflect"
)

// Auther composes the credential verifier and the token service. It is
// stateless across requests: the only shared values are the signing key
// and configuration, read-only after construction.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and mints a bearer token. No session
// record is created; the token is the only artifact.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "identifier", identifier, "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrIdentityNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return "", err
	}

	s.logger.Info("Login succeeded", "identifier", identifier)

	return token, nil
}

// IdentityFromToken validates a raw bearer token and resolves its
// subject through a fresh store lookup, so a deleted user's token stops
// resolving immediately.
func (s *Auther) IdentityFromToken(ctx context.Context, raw string) (Identity, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("IdentityFromToken validation failed", "error", err)
		return nil, err
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Subject())
	if err != nil {
		s.logger.Error("IdentityFromToken subject lookup failed", "subject", claims.Subject(), "error", err)
		return nil, err
	}

	return identity, nil
}

// ClaimsFromToken validates a raw token without resolving the subject.
func (s *Auther) ClaimsFromToken(raw string) (AuthClaims, error) {
	return s.tokenService.Validate(raw)
}
