// Package auth issues and verifies session tokens and makes the
// authorization decision explicit: handlers and clients receive a
// Session value and ask IsAdmin, never an ambient context.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linergy/subtrans-ops/internal/models"
)

var (
	ErrInvalidToken   = errors.New("JWT invalid")
	ErrTokenExpired   = errors.New("JWT expired")
	ErrBadCredentials = errors.New("credenciales incorrectas")
)

// Session is the verified identity a request or client call carries.
type Session struct {
	UserID string
	Email  string
	Role   string
	Token  string
}

// IsAdmin is the capability check for administrator-only operations.
// The server remains authoritative; clients use it only to gate UI
// affordances.
func IsAdmin(s *Session) bool {
	return s != nil && s.Role == models.RoleAdmin
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Manager mints and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Mint(p *models.Profile) (string, error) {
	now := time.Now()
	c := claims{
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *Manager) Verify(token string) (*Session, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &Session{
		UserID: c.Subject,
		Email:  c.Email,
		Role:   c.Role,
		Token:  token,
	}, nil
}

// IsAuthError reports whether an error is a session-invalidating
// authentication failure, detected by the message signatures the
// backend emits. A plain 401 from a function endpoint does not match;
// only token-lifecycle failures force a sign-out.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return (strings.Contains(msg, "JWT") && strings.Contains(msg, "expired")) ||
		strings.Contains(msg, "refresh_token_not_found") ||
		strings.Contains(msg, "invalid_grant") ||
		(strings.Contains(msg, "JWT") && strings.Contains(msg, "invalid"))
}
