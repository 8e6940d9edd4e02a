package auth_test

import (
	"testing"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/auth"
	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)

	return token
}

func TestExpiryFromJWT(t *testing.T) {
	t.Parallel()

	t.Run("reads exp claim", func(t *testing.T) {
		t.Parallel()

		expiresAt := time.Now().Add(2 * time.Hour).Truncate(time.Second)
		token := signedToken(t, jwt.MapClaims{"sub": "user", "exp": expiresAt.Unix()})

		got, err := auth.ExpiryFromJWT(token)
		require.NoError(t, err)
		assert.Equal(t, expiresAt.Unix(), got.Unix())
	})

	t.Run("missing exp claim", func(t *testing.T) {
		t.Parallel()

		token := signedToken(t, jwt.MapClaims{"sub": "user"})

		_, err := auth.ExpiryFromJWT(token)
		require.ErrorIs(t, err, constants.ErrNoExpirationClaim)
	})

	t.Run("opaque token", func(t *testing.T) {
		t.Parallel()

		_, err := auth.ExpiryFromJWT("not-a-jwt")
		require.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
	})

	t.Run("manager uses exp of configured access token", func(t *testing.T) {
		t.Parallel()

		expiresAt := time.Now().Add(-1 * time.Minute)
		token := signedToken(t, jwt.MapClaims{"exp": expiresAt.Unix()})

		manager := auth.NewOAuth2TokenManager(&auth.OAuth2Config{AccessToken: token})
		assert.False(t, manager.Current().Valid())
	})
}
