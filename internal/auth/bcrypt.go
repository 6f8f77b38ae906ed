package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor. Matches the cost the user records
// were originally hashed with, so existing hashes keep verifying.
const HashCost = 10

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext password
// matches the hashed password. A mismatch returns
// ErrMismatchedHashAndPassword; a hash bcrypt cannot parse returns
// ErrCorruptHash so corruption is never reported as a wrong password.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return goerrors.Wrap(err, ErrCorruptHash.Category, ErrCorruptHash.Message).
			WithTextCode(ErrCorruptHash.TextCode)
	}
	return nil
}

// Hasher adapts the package functions to the PasswordAuthenticator
// interface so collaborators can take a value instead of free functions.
type Hasher struct{}

func (Hasher) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (Hasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

var _ PasswordAuthenticator = Hasher{}
