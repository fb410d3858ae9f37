package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-at-least-32-chars-long",
		Issuer:          "rinkpass-backend",
		ExpirationHours: 24,
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := newTestService()

	token, expiresAt, err := service.GenerateToken("admin@rinkpass.test", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@rinkpass.test", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "rinkpass-backend", claims.Issuer)
}

func TestJWTService_ValidateToken_Errors(t *testing.T) {
	service := newTestService()

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:          "a-completely-different-secret-keyyyy",
			Issuer:          "rinkpass-backend",
			ExpirationHours: 24,
		})
		token, _, err := other.GenerateToken("admin@rinkpass.test", "admin")
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		now := time.Now()
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.New().String(),
				Subject:   "admin@rinkpass.test",
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-secret-key-at-least-32-chars-long"))
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects missing subject", func(t *testing.T) {
		now := time.Now()
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.New().String(),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-secret-key-at-least-32-chars-long"))
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}
