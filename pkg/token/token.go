// Package token signs the session id carried by the portal cookie.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalid is returned for tokens that fail signature or claim checks.
var ErrInvalid = errors.New("invalid session token")

// Claims binds a token to one session record. There is no expiry claim: sessions live until logout.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	secret []byte
	issuer string
}

func NewSigner(secret, issuer string) *Signer {
	return &Signer{secret: []byte(secret), issuer: issuer}
}

// Issue returns a signed token for the session id.
func (s *Signer) Issue(sessionID string, now time.Time) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("issue token: empty session id")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		SessionID: sessionID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies the token and returns the session id it carries.
func (s *Signer) Parse(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalid
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalid
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return "", ErrInvalid
	}
	if claims.SessionID == "" {
		return "", ErrInvalid
	}
	return claims.SessionID, nil
}
