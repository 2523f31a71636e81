package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", 0)

	token, err := issuer.GenerateJWT(7, "a@x.com", "admin")
	require.NoError(t, err)

	claims, err := issuer.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour).GenerateJWT(1, "a@x.com", "user")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWTExpired(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer.now = func() time.Time { return issuedAt }
	token, err := issuer.GenerateJWT(1, "a@x.com", "user")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseJWTRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("s3cret", time.Hour).ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWTGarbage(t *testing.T) {
	_, err := NewTokenIssuer("s3cret", time.Hour).ParseJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
