package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/golang-jwt/jwt/v5"
)

// ExpiryFromJWT reads the exp claim of an access token without verifying its signature.
// Identity providers that omit expires_in from the token response still encode the expiry here.
func ExpiryFromJWT(accessToken string) (time.Time, error) {
	if strings.Count(accessToken, ".") != 2 {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading exp claim: %w", err)
	}

	if exp == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return exp.Time, nil
}
