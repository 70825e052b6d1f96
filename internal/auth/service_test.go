package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safetube/safetube-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// fakeCounter is an in-memory attemptCounter. Expiry is ignored; the tests
// drive counts directly.
type fakeCounter struct {
	counts map[string]int64
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}}
}

func (f *fakeCounter) Increment(ctx context.Context, key string) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (f *fakeCounter) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.counts, k)
	}
	return nil
}

func testService(t *testing.T, attempts attemptCounter) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	return NewService(config.AuthConfig{
		PINHash:        string(hash),
		JWTSecret:      "test-secret",
		TokenTTL:       30 * time.Minute,
		MaxPINAttempts: 3,
		LockoutPeriod:  5 * time.Minute,
	}, attempts)
}

func TestVerifyPIN_Success(t *testing.T) {
	svc := testService(t, newFakeCounter())

	token, err := svc.VerifyPIN(context.Background(), "1234", "device-1")
	if err != nil {
		t.Fatalf("VerifyPIN: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Role != "parent" {
		t.Errorf("role = %q, want parent", claims.Role)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > 30*time.Minute {
		t.Errorf("expiry %v not bounded by token TTL", claims.ExpiresAt)
	}
}

func TestVerifyPIN_WrongPIN(t *testing.T) {
	svc := testService(t, newFakeCounter())

	if _, err := svc.VerifyPIN(context.Background(), "9999", "device-1"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("err = %v, want ErrInvalidPIN", err)
	}
}

func TestVerifyPIN_LockoutAfterMaxAttempts(t *testing.T) {
	counter := newFakeCounter()
	svc := testService(t, counter)

	for i := 0; i < 2; i++ {
		if _, err := svc.VerifyPIN(context.Background(), "9999", "device-1"); !errors.Is(err, ErrInvalidPIN) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidPIN", i+1, err)
		}
	}
	if _, err := svc.VerifyPIN(context.Background(), "9999", "device-1"); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("err = %v, want ErrLockedOut at the limit", err)
	}

	// A correct PIN during the lockout window is still rejected.
	if _, err := svc.VerifyPIN(context.Background(), "1234", "device-1"); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("err = %v, want ErrLockedOut for correct pin while locked", err)
	}
}

func TestVerifyPIN_LockoutIsPerClient(t *testing.T) {
	svc := testService(t, newFakeCounter())

	for i := 0; i < 3; i++ {
		svc.VerifyPIN(context.Background(), "9999", "device-1")
	}

	if _, err := svc.VerifyPIN(context.Background(), "1234", "device-2"); err != nil {
		t.Fatalf("other client must not inherit the lockout: %v", err)
	}
}

func TestVerifyPIN_SuccessResetsCounter(t *testing.T) {
	counter := newFakeCounter()
	svc := testService(t, counter)

	svc.VerifyPIN(context.Background(), "9999", "device-1")
	if _, err := svc.VerifyPIN(context.Background(), "1234", "device-1"); err != nil {
		t.Fatalf("VerifyPIN: %v", err)
	}

	if got := counter.counts["auth:pin_attempts:device-1"]; got != 0 {
		t.Errorf("attempt counter = %d after success, want 0", got)
	}
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	counter := newFakeCounter()
	svc := testService(t, counter)

	token, err := svc.VerifyPIN(context.Background(), "1234", "device-1")
	if err != nil {
		t.Fatalf("VerifyPIN: %v", err)
	}

	other := NewService(config.AuthConfig{
		PINHash:        svc.cfg.PINHash,
		JWTSecret:      "different-secret",
		TokenTTL:       30 * time.Minute,
		MaxPINAttempts: 3,
		LockoutPeriod:  5 * time.Minute,
	}, counter)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	svc := testService(t, newFakeCounter())
	if _, err := svc.ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage token must not validate")
	}
}
