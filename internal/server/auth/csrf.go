// Package auth issues and verifies the anti-forgery tokens embedded in
// state-mutating HTML forms. A token is a short-lived HS256 JWT whose
// subject is the session that requested the form, so a token stolen from
// one session is useless to another.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/noteboard/internal/common"
)

// GenerateCSRFToken mints a token bound to sessionID, valid for
// validityDuration.
func GenerateCSRFToken(sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyCSRFToken checks that tokenString is a valid, unexpired token issued
// for sessionID. Any failure is reported uniformly as common.ErrInvalidToken.
func VerifyCSRFToken(tokenString string, sessionID string, secretKey []byte) error {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject != sessionID {
		return common.ErrInvalidToken
	}

	return nil
}
