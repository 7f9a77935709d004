// Package auth issues and verifies the HS256 tokens used by the API:
// short-lived session access tokens, and the federated identity tokens the
// sign-in exchange accepts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims includes the registered claims plus the account identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// IdentityClaims is what we expect inside an externally obtained identity
// token: the provider's stable subject and, optionally, an email.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GenerateToken signs a session access token for userID. Each token carries a
// unique jti so two tokens issued in the same second still differ.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies a session token and returns the embedded user
// id. Expired tokens are reported as common.ErrTokenExpired so callers can
// trigger a refresh instead of failing outright.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// ParseIdentityToken verifies an identity token with the configured identity
// secret and returns the provider subject and email. The subject must be
// non-empty.
func ParseIdentityToken(tokenString string, identitySecret []byte) (subject, email string, err error) {
	claims := &IdentityClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return identitySecret, nil
	})
	if err != nil || !token.Valid {
		return "", "", common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	return claims.Subject, claims.Email, nil
}
