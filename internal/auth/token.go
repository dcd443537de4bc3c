// Package auth issues and verifies the signed access tokens carrying a principal.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/permission"
)

const issuer = "nexus-gaming"

// Claims is the JWT payload: the subject is the user id.
type Claims struct {
	Role permission.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// Issue signs an HS256 access token for the principal.
func (m *TokenManager) Issue(p permission.Principal) (string, time.Time, error) {
	if p.ID == "" || !p.Role.Valid() {
		return "", time.Time{}, errors.New("cannot issue token for incomplete principal")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the token and returns its principal.
// All failures wrap bizerror.ErrUnauthenticated.
func (m *TokenManager) Parse(tokenString string) (permission.Principal, error) {
	if tokenString == "" {
		return permission.Principal{}, fmt.Errorf("%w: missing token", bizerror.ErrUnauthenticated)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return permission.Principal{}, fmt.Errorf("%w: invalid token", bizerror.ErrUnauthenticated)
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return permission.Principal{}, fmt.Errorf("%w: incomplete token claims", bizerror.ErrUnauthenticated)
	}
	return permission.Principal{ID: claims.Subject, Role: claims.Role}, nil
}
