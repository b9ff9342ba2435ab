// Package auth issues and verifies the HS256 bearer tokens that identify callers.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/errs"
)

// Principal is the caller a valid token identifies.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Name  string    `json:"name,omitempty"`
}

// Claims carries the principal in the token payload.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier turns a bearer token into a Principal.
type Verifier interface {
	Verify(token string) (Principal, error)
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for p that expires after the manager's ttl.
func (m *TokenManager) Issue(p Principal) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	claims := Claims{
		UserID: p.ID.String(),
		Email:  p.Email,
		Name:   p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks the signature and expiry of token and returns the principal it names.
func (m *TokenManager) Verify(token string) (Principal, error) {
	if token == "" {
		return Principal{}, errs.NewMissingTokenError()
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, errs.NewExpiredTokenError()
		}
		return Principal{}, errs.NewInvalidTokenError()
	}
	if !parsed.Valid {
		return Principal{}, errs.NewInvalidTokenError()
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, errs.NewInvalidClaimsError()
	}
	return Principal{ID: id, Email: claims.Email, Name: claims.Name}, nil
}
