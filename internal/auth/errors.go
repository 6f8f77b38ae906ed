package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by the structured auth errors. Clients can branch
// on these without parsing messages.
const (
	TextCodeInvalidCreds    = "AUTH_INVALID_CREDENTIALS"
	TextCodeTooManyAttempts = "AUTH_TOO_MANY_ATTEMPTS"
	TextCodeTokenExpired    = "AUTH_TOKEN_EXPIRED"
	TextCodeTokenMalformed  = "AUTH_TOKEN_MALFORMED"
	TextCodeCorruptHash     = "AUTH_CORRUPT_HASH"
)

// ErrIdentityNotFound is the error we return for non found identities.
// The HTTP layer presents it with the same message as a bad password so
// the login path does not leak which usernames exist.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound)

// ErrMismatchedHashAndPassword is the uniform bad-credentials error
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrTooManyLoginAttempts is returned when a user exceeds the failed
// login budget inside the cooldown window
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrTokenExpired is returned for tokens past their expiry
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers tampered signatures, garbage input, and
// unexpected signing algorithms
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrCorruptHash signals a stored hash bcrypt cannot parse. This is a
// data corruption signal, never treated as a wrong password.
var ErrCorruptHash = goerrors.New("stored password hash is corrupt", goerrors.CategoryInternal).
	WithTextCode(TextCodeCorruptHash)

// ErrNoEmptyString rejects empty secrets before they reach bcrypt
var ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryBadInput)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed token errors
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
