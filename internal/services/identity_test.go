package services_test

import (
	"testing"
	"time"

	"marketplace/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestIdentityService_ValidateToken(t *testing.T) {
	svc := services.NewIdentityService(testJWTSecret)

	token := signToken(t, testJWTSecret, jwt.MapClaims{
		"sub":   "user-1",
		"email": "user1@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	identity, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "user1@example.com", identity.Email)

	// Legacy user_id claim
	token = signToken(t, testJWTSecret, jwt.MapClaims{"user_id": "user-2", "exp": time.Now().Add(time.Hour).Unix()})
	identity, err = svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", identity.UserID)
	assert.Empty(t, identity.Email)
}

func TestIdentityService_ValidateToken_Rejects(t *testing.T) {
	svc := services.NewIdentityService(testJWTSecret)

	_, err := svc.ValidateToken("invalid.token.string")
	assert.Error(t, err)

	wrongSecret := signToken(t, "another_secret", jwt.MapClaims{"sub": "user-1"})
	_, err = svc.ValidateToken(wrongSecret)
	assert.Error(t, err)

	expired := signToken(t, testJWTSecret, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err = svc.ValidateToken(expired)
	assert.Error(t, err)

	noSubject := signToken(t, testJWTSecret, jwt.MapClaims{"email": "a@example.com"})
	_, err = svc.ValidateToken(noSubject)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing subject")
}
