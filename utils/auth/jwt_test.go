package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, cfg JWTConfig) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(cfg)
	require.NoError(t, err)
	return m
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager(JWTConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestGenerateAndValidate(t *testing.T) {
	m := newManager(t, JWTConfig{Secret: "s3cret", Issuer: "brightpath-api", Expiry: time.Hour})

	token, jti, err := m.GenerateAccessToken("user_2abc", "educator")
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.UserID())
	assert.Equal(t, "educator", claims.Role)
	assert.Equal(t, jti, claims.ID)
}

func TestValidateRejectsWrongSecretAndIssuer(t *testing.T) {
	issuer := newManager(t, JWTConfig{Secret: "one", Issuer: "brightpath-api"})
	token, _, err := issuer.GenerateAccessToken("u1", "")
	require.NoError(t, err)

	_, err = newManager(t, JWTConfig{Secret: "two", Issuer: "brightpath-api"}).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = newManager(t, JWTConfig{Secret: "one", Issuer: "someone-else"}).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := newManager(t, JWTConfig{Secret: "s", Issuer: "brightpath-api"})
	claims := Claims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "brightpath-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	m := newManager(t, JWTConfig{Secret: "s"})
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		TokenType:        TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
