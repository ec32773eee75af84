package service

import (
	"errors"
	"fmt"
	"time"

	"cozy_nook/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	defaultSigningKey = "cozy-nook-dev-key"
)

var errInvalidToken = errors.New("invalid token")

// Claims carries the session snapshot the token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(signingKey string, ttl time.Duration) *TokenIssuer {
	if signingKey == "" {
		signingKey = defaultSigningKey
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{key: []byte(signingKey), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(s models.Session) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: s.Username,
		IsAdmin:  s.IsAdmin,
	})
	return token.SignedString(t.key)
}

func (t *TokenIssuer) Parse(accessToken string) (models.Session, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.key, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return models.Session{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return models.Session{}, errInvalidToken
	}
	return models.Session{Username: claims.Username, IsAdmin: claims.IsAdmin}, nil
}
