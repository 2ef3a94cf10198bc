package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller as carried in a token.
type Identity struct {
	UserID     string `json:"uid"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Privileges string `json:"privileges"`
}

type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"uid"`
	Role       string `json:"role"`
	Privileges string `json:"privileges"`
}

// Identity converts verified claims back into the caller identity.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:     c.UserID,
		Username:   c.Subject,
		Role:       c.Role,
		Privileges: c.Privileges,
	}
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(key []byte, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: key, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for id and returns it along with its expiry.
func (t *TokenIssuer) Issue(id Identity) (string, time.Time, error) {
	if id.Username == "" {
		return "", time.Time{}, errors.New("token subject is required")
	}
	now := t.now().UTC()
	exp := now.Add(t.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:     id.UserID,
		Role:       id.Role,
		Privileges: id.Privileges,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, issuer and expiry of raw.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
