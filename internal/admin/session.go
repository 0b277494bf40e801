// Package admin authenticates office staff: bcrypt password verification,
// HMAC session tokens in an HttpOnly cookie, and per-IP login throttling.
package admin

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "lingkod/pkg/domain-errors"
)

// SessionTTL bounds how long an admin session stays valid.
const SessionTTL = 24 * time.Hour

// SessionManager issues and validates signed session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: SessionTTL}
}

// Issue signs a session token for the given admin identity.
func (m *SessionManager) Issue(username string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// Validate checks the token's signature and expiry and returns the admin
// identity it was issued to.
func (m *SessionManager) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	return claims.Subject, nil
}
