package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims of a session token. IssuedMs keeps millisecond
// precision so sign-out-everywhere cutoffs compare exactly.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	IssuedMs int64  `json:"iat_ms"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue mints a token for email with a fresh session id.
func (i *Issuer) Issue(email, name string) (string, *Session, error) {
	now := i.now()
	claims := Claims{
		Email:    email,
		Name:     name,
		IssuedMs: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tok, claims.session(), nil
}

// Parse verifies token and returns the session it carries.
func (i *Issuer) Parse(token string) (*Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Email == "" || claims.ID == "" {
		return nil, errors.New("parse token: missing email or session id")
	}
	return claims.session(), nil
}

func (c Claims) session() *Session {
	s := &Session{
		ID:       c.ID,
		Email:    c.Email,
		Name:     c.Name,
		IssuedAt: time.UnixMilli(c.IssuedMs).UTC(),
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return s
}
