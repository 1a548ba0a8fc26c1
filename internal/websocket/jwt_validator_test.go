package websocket

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenValidator_ValidToken(t *testing.T) {
	v := NewTokenValidator(testSecret)

	userID := uuid.New()
	token := signTestToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	got, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenValidator_Rejections(t *testing.T) {
	v := NewTokenValidator(testSecret)

	validClaims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", signTestToken(t, "other-secret", jwt.SigningMethodHS256, validClaims)},
		{"wrong algorithm", signTestToken(t, testSecret, jwt.SigningMethodHS512, validClaims)},
		{
			"expired",
			signTestToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": uuid.New().String(),
				"exp": time.Now().Add(-time.Minute).Unix(),
			}),
		},
		{
			"non-uuid subject",
			signTestToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "not-a-uuid",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			"missing subject",
			signTestToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateToken(tt.token)
			assert.Equal(t, uuid.Nil, got)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}
