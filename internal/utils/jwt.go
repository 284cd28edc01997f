package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionSubject is the only principal of the admin tool.
const SessionSubject = "admin"

// SessionClaims is the payload of an admin session token.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session token valid for ttl.
func GenerateSessionToken(secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("session secret is empty")
	}
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   SessionSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateSessionToken parses and verifies a session token.
func ValidateSessionToken(secret, token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject != SessionSubject {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// SessionCookie is the cookie holding the admin session token.
const SessionCookie = "auth_session"
