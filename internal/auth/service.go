package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/safetube/safetube-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidPIN is returned for a wrong PIN that has not yet tripped
	// the lockout.
	ErrInvalidPIN = errors.New("invalid pin")

	// ErrLockedOut is returned once too many failed attempts accumulate.
	// The caller must wait for the lockout to expire.
	ErrLockedOut = errors.New("too many failed pin attempts")
)

// attemptCounter tracks failed PIN attempts per client. Backed by redis in
// production so lockouts survive restarts and apply across instances.
type attemptCounter interface {
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service verifies the parent PIN and issues short-lived session tokens for
// the rule-management endpoints.
type Service struct {
	cfg      config.AuthConfig
	attempts attemptCounter
}

func NewService(cfg config.AuthConfig, attempts attemptCounter) *Service {
	return &Service{cfg: cfg, attempts: attempts}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// VerifyPIN checks the PIN against the configured bcrypt hash and returns a
// signed session token. Failed attempts are counted per client key; hitting
// the limit locks that client out for the configured period. A successful
// login clears the counter.
func (s *Service) VerifyPIN(ctx context.Context, pin, clientKey string) (string, error) {
	key := "auth:pin_attempts:" + clientKey

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PINHash), []byte(pin)); err != nil {
		count, cerr := s.attempts.Increment(ctx, key)
		if cerr != nil {
			return "", fmt.Errorf("count pin attempt: %w", cerr)
		}
		if cerr := s.attempts.Expire(ctx, key, s.cfg.LockoutPeriod); cerr != nil {
			return "", fmt.Errorf("set attempt expiry: %w", cerr)
		}
		if count >= int64(s.cfg.MaxPINAttempts) {
			return "", ErrLockedOut
		}
		return "", ErrInvalidPIN
	}

	// Reject a correct PIN while locked out, otherwise the lockout could be
	// brute-forced through.
	count, err := s.attempts.Increment(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check pin attempts: %w", err)
	}
	if count > int64(s.cfg.MaxPINAttempts) {
		return "", ErrLockedOut
	}
	if err := s.attempts.Delete(ctx, key); err != nil {
		return "", fmt.Errorf("reset pin attempts: %w", err)
	}

	return s.issueToken()
}

func (s *Service) issueToken() (string, error) {
	now := time.Now()
	claims := Claims{
		Role: "parent",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "parent",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims.
func (s *Service) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
