package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testClaims(tokenType string) *JWTClaims {
	now := time.Now()
	return &JWTClaims{
		UserID:    42,
		Username:  "fumador",
		Type:      tokenType,
		ExpiresAt: now.Add(time.Hour).Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		Issuer:    "smokering-backend",
		Subject:   "42",
	}
}

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT(testClaims(TokenTypeAccess), testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "fumador", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "smokering-backend", claims.Issuer)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(testClaims(TokenTypeAccess), testSecret)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpiredToken(t *testing.T) {
	claims := testClaims(TokenTypeAccess)
	claims.ExpiresAt = time.Now().Add(-time.Minute).Unix()

	token, err := GenerateJWT(claims, testSecret)
	require.NoError(t, err)

	_, err = ValidateJWT(token, testSecret)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestTokenTypeRoundTrips(t *testing.T) {
	token, err := GenerateJWT(testClaims(TokenTypeRefresh), testSecret)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
}
