// Package apikey mints and verifies the signed keys that guard the
// certificates REST API. A key's role decides what it may do: anon keys
// can read, service_role keys can also write.
package apikey

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "portfolio"

// Role is the privilege level carried by a key.
type Role string

const (
	RoleAnon    Role = "anon"
	RoleService Role = "service_role"
)

var (
	ErrInvalidKey = errors.New("invalid api key")
	ErrNoSecret   = errors.New("api key secret is not configured")
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAnon, RoleService:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q (want %s or %s)", s, RoleAnon, RoleService)
	}
}

// CanWrite reports whether the role may insert, update and delete rows.
func (r Role) CanWrite() bool {
	return r == RoleService
}

// Claims are the JWT claims of an api key.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Keys signs and checks api keys with one HMAC secret.
type Keys struct {
	secret []byte
}

func New(secret string) (*Keys, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Keys{secret: []byte(secret)}, nil
}

// Mint returns a signed key for role. A zero ttl mints a key that never
// expires, which is how long-lived anon keys are handed to browsers.
func (k *Keys) Mint(role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
}

// Verify checks the signature, issuer and expiry of token and returns its
// claims.
func (k *Keys) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return k.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidKey
	}
	if _, err := ParseRole(string(claims.Role)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return claims, nil
}
