package auth_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flixandchill/backend/internal/auth"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings, we reject them first
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)

			err = auth.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	password := "correct horse battery staple"

	first, err := auth.HashPassword(password)
	require.NoError(t, err)

	second, err := auth.HashPassword(password)
	require.NoError(t, err)

	// each call salts independently, yet both verify
	assert.NotEqual(t, first, second)
	assert.NoError(t, auth.ComparePasswordAndHash(password, first))
	assert.NoError(t, auth.ComparePasswordAndHash(password, second))
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  nil,
		},
		{
			name:     "Wrong password",
			password: "not-the-password",
			hash:     hash,
			wantErr:  auth.ErrMismatchedHashAndPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComparePasswordAndHash_CorruptHash(t *testing.T) {
	err := auth.ComparePasswordAndHash("whatever", "not-a-bcrypt-hash")
	require.Error(t, err)

	// corruption is surfaced distinctly, never as a wrong password
	assert.NotErrorIs(t, err, auth.ErrMismatchedHashAndPassword)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, auth.TextCodeCorruptHash, richErr.TextCode)
	assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
}

func TestHasher_ImplementsPasswordAuthenticator(t *testing.T) {
	var hasher auth.PasswordAuthenticator = auth.Hasher{}

	hash, err := hasher.HashPassword("roundtrip-me")
	require.NoError(t, err)
	assert.NoError(t, hasher.ComparePasswordAndHash("roundtrip-me", hash))
}
