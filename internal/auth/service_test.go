package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestParseTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	service := &Service{secret: secret}
	principal := uuid.New()

	signed := signToken(t, secret, jwt.MapClaims{
		"sub":  principal.String(),
		"role": RoleAdmin,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	claims, err := service.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.Principal)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestRefreshKeepsPrincipalAndRole(t *testing.T) {
	secret := []byte("test-secret")
	service := &Service{secret: secret}
	principal := uuid.New()

	signed := signToken(t, secret, jwt.MapClaims{
		"sub":  principal.String(),
		"role": RoleMember,
		"exp":  time.Now().Add(time.Minute).Unix(),
	})

	refreshed, err := service.Refresh(signed)
	require.NoError(t, err)

	claims, err := service.ParseToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.Principal)
	assert.Equal(t, RoleMember, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	service := &Service{secret: []byte("right-secret")}

	signed := signToken(t, []byte("wrong-secret"), jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := service.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	service := &Service{secret: secret}

	signed := signToken(t, secret, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	_, err := service.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbageSubject(t *testing.T) {
	secret := []byte("test-secret")
	service := &Service{secret: secret}

	signed := signToken(t, secret, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := service.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
