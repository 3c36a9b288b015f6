// Package token issues and verifies the signed identity tokens that
// bind a request to a user id.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"demo/shop/internal/model"
)

type claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
}

func New(secret []byte, ttl time.Duration) *Service {
	return &Service{secret: secret, ttl: ttl}
}

// Issue signs a token carrying userID, valid for the configured TTL.
func (s *Service) Issue(userID int64) (string, error) {
	now := time.Now()
	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the bound user id.
// Any failure is model.ErrInvalidToken; a missing token is the caller's
// concern, not an error here.
func (s *Service) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, model.ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.UserID <= 0 {
		return 0, model.ErrInvalidToken
	}
	return c.UserID, nil
}
