// Package auth issues and checks the bearer tokens that gate every control
// write, and exchanges the pairing code for one.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"homeboard/internal/errs"
	"homeboard/internal/models"
)

// Subject is the only subject a control token may carry.
const Subject = "control"

type TokenServiceInterface interface {
	Issue() (string, error)
	Verify(token string) error
}

// TokenService signs HS256 tokens with the persisted server secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  models.Clock
}

func NewTokenService(secret []byte, ttl time.Duration, clock models.Clock) *TokenService {
	if clock == nil {
		clock = models.SystemClock()
	}
	return &TokenService{secret: secret, ttl: ttl, clock: clock}
}

func (s *TokenService) Issue() (string, error) {
	now := s.clock()
	claims := jwt.RegisteredClaims{
		Subject:   Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify accepts only an unexpired HS256 token for the control subject
// signed with the current secret. Every failure is errs.ErrUnauthorized.
func (s *TokenService) Verify(token string) error {
	if token == "" {
		return errs.ErrUnauthorized
	}
	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(Subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrUnauthorized, err.Error())
	}
	return nil
}
