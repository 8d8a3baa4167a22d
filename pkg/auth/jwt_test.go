package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "circulate-backend/pkg/errors"
)

func signedToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenParserVerified(t *testing.T) {
	parser := NewTokenParser("test-secret")

	t.Run("accepts a valid token", func(t *testing.T) {
		token := signedToken(t, "test-secret", Claims{
			Email:         "ann@example.com",
			EmailVerified: true,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		user, err := parser.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.UserID)
		assert.Equal(t, "ann@example.com", user.Email)
		assert.True(t, user.EmailVerified)
	})

	t.Run("rejects a wrong signature", func(t *testing.T) {
		token := signedToken(t, "other-secret", Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		})

		_, err := parser.Parse(token)
		assert.True(t, appErrors.IsUnauthorized(err))
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := signedToken(t, "test-secret", Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})

		_, err := parser.Parse(token)
		assert.True(t, appErrors.IsUnauthorized(err))
	})

	t.Run("rejects a token without subject", func(t *testing.T) {
		token := signedToken(t, "test-secret", Claims{Email: "ann@example.com"})

		_, err := parser.Parse(token)
		assert.True(t, appErrors.IsUnauthorized(err))
	})
}

func TestTokenParserGatewayVerified(t *testing.T) {
	parser := NewTokenParser("")

	t.Run("decodes claims without checking the signature", func(t *testing.T) {
		token := signedToken(t, "whatever", Claims{
			Email:            "bob@example.com",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u2"},
		})

		user, err := parser.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "u2", user.UserID)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := parser.Parse("not-a-jwt")
		assert.True(t, appErrors.IsUnauthorized(err))
	})
}

func TestGetUserFromContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := WithUser(context.Background(), &UserContext{UserID: "u1"})
		user, err := GetUserFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.UserID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := GetUserFromContext(context.Background())
		assert.True(t, appErrors.IsUnauthorized(err))
	})
}
