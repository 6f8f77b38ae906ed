package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/flixandchill/backend/internal/auth"
)

func TestJWTClaims(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID: "record-1",
	}

	assert.Equal(t, "alice", claims.Subject())
	assert.Equal(t, "record-1", claims.UserID())
	assert.Equal(t, now, claims.IssuedAt())
	assert.Equal(t, now.Add(time.Hour), claims.Expires())
}

func TestJWTClaims_Fallbacks(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}

	// without a uid the subject doubles as the record key
	assert.Equal(t, "alice", claims.UserID())
	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}
