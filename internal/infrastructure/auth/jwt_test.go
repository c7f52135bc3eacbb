package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/infrastructure/config"
)

func newTestService(t *testing.T, expiration time.Duration) *JWTService {
	svc, err := NewJWTService(config.JWTConfig{
		Secret:          "test-secret-that-is-long-enough-123",
		TokenExpiration: expiration,
		Issuer:          "kasso-backend",
	})
	require.NoError(t, err)
	return svc
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService(t, time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "tyrion@kasso.test")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "tyrion@kasso.test", claims.Email)
	assert.Equal(t, "kasso-backend", claims.Issuer)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestService(t, time.Hour)
	svc.expiration = -time.Minute

	token, err := svc.GenerateToken(uuid.New(), "tyrion@kasso.test")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := newTestService(t, time.Hour)
	other := newTestService(t, time.Hour)
	other.secret = []byte("another-secret-another-secret-456")

	token, err := svc.GenerateToken(uuid.New(), "tyrion@kasso.test")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Garbage(t *testing.T) {
	svc := newTestService(t, time.Hour)
	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService(config.JWTConfig{})
	assert.Error(t, err)
}
