package edge

import (
	"errors"
	"testing"
	"time"

	"github.com/Paurakh977/BRIXA-sub000/jwt"
)

var (
	accessSecret  = []byte("edge-access-secret")
	refreshSecret = []byte("edge-refresh-secret")
)

func newSigner(t *testing.T, accessTTL time.Duration) *jwt.Manager {
	t.Helper()
	m, err := jwt.NewManager(jwt.Config{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}
	return m
}

func TestNewRejectsEmptySecret(t *testing.T) {
	if _, err := New(nil, 0); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestVerifyValidToken(t *testing.T) {
	signer := newSigner(t, time.Minute)
	v, err := New(accessSecret, 0)
	if err != nil {
		t.Fatalf("verifier init failed: %v", err)
	}

	token, err := signer.CreateAccess("u1", "alice@example.com", "CLIENT")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != "CLIENT" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyCollapsesFailures(t *testing.T) {
	signer := newSigner(t, time.Minute)
	v, err := New(accessSecret, 0)
	if err != nil {
		t.Fatalf("verifier init failed: %v", err)
	}

	refresh, err := signer.CreateRefresh("u1", "alice@example.com", "CLIENT")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	for _, tokenStr := range []string{"", "garbage", refresh} {
		if _, err := v.Verify(tokenStr); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tokenStr, err)
		}
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	signer := newSigner(t, time.Millisecond)
	v, err := New(accessSecret, 0)
	if err != nil {
		t.Fatalf("verifier init failed: %v", err)
	}

	token, err := signer.CreateAccess("u1", "alice@example.com", "CLIENT")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIsExpiring(t *testing.T) {
	signer := newSigner(t, 30*time.Second)
	v, err := New(accessSecret, 0)
	if err != nil {
		t.Fatalf("verifier init failed: %v", err)
	}

	token, err := signer.CreateAccess("u1", "alice@example.com", "CLIENT")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	// 30s of lifetime left: inside a 60s buffer, outside a 5s buffer.
	if !v.IsExpiring(claims, 60*time.Second) {
		t.Fatal("expected expiring within 60s buffer")
	}
	if v.IsExpiring(claims, 5*time.Second) {
		t.Fatal("did not expect expiring within 5s buffer")
	}

	if !v.IsExpiring(nil, time.Second) {
		t.Fatal("nil claims must report expiring")
	}
}
