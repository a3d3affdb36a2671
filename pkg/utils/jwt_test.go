package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-space-backend/pkg/models"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateToken("user-1", "space-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ident, err := svc.ExtractIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Equal(t, "space-1", ident.SpaceID)
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateToken("user-1", "space-1")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	now := time.Now()
	claims := &models.TokenClaims{
		UserID:  "user-1",
		SpaceID: "space-1",
		Exp:     now.Add(-time.Hour).Unix(),
		Iat:     now.Add(-2 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTServiceRejectsUnexpectedSigningMethod(t *testing.T) {
	svc := NewJWTService("test-secret")

	claims := &models.TokenClaims{
		UserID:  "user-1",
		SpaceID: "space-1",
		Exp:     time.Now().Add(time.Hour).Unix(),
		Iat:     time.Now().Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestJWTServiceRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
