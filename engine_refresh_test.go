package brixauth

import (
	"context"
	"errors"
	"testing"
)

func TestRefreshSuccess(t *testing.T) {
	store := newMockStore()
	seedUser(t, store, "u1", "alice@example.com", "CLIENT", "correct-horse", true)
	engine := newTestEngine(t, store)

	tokens, err := engine.IssueSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	rotated, err := engine.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := engine.jwtManager.ParseAccess(rotated.AccessToken)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("expected subject u1, got %q", claims.Subject)
	}
}

func TestRefreshGarbageToken(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, store)

	_, err := engine.Refresh(context.Background(), "not-a-token")
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestRefreshAccessTokenRejected(t *testing.T) {
	store := newMockStore()
	seedUser(t, store, "u1", "alice@example.com", "CLIENT", "correct-horse", true)
	engine := newTestEngine(t, store)

	tokens, err := engine.IssueSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// An access token is signed with the other secret and must not be
	// usable as a refresh token.
	_, err = engine.Refresh(context.Background(), tokens.AccessToken)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestRefreshDeactivatedAccount(t *testing.T) {
	store := newMockStore()
	seedUser(t, store, "u1", "alice@example.com", "CLIENT", "correct-horse", true)
	engine := newTestEngine(t, store)

	tokens, err := engine.IssueSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if err := engine.SetActive(context.Background(), "u1", false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	// The refresh token still verifies; the store read inside issuance is
	// what rejects it.
	_, err = engine.Refresh(context.Background(), tokens.RefreshToken)
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestRefreshDeletedAccount(t *testing.T) {
	store := newMockStore()
	seedUser(t, store, "u1", "alice@example.com", "CLIENT", "correct-horse", true)
	engine := newTestEngine(t, store)

	tokens, err := engine.IssueSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	delete(store.users, "u1")

	_, err = engine.Refresh(context.Background(), tokens.RefreshToken)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRefreshSignsLatestRole(t *testing.T) {
	store := newMockStore()
	seedUser(t, store, "u1", "alice@example.com", "CLIENT", "correct-horse", true)
	engine := newTestEngine(t, store)

	tokens, err := engine.IssueSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if err := engine.SetRole(context.Background(), "u1", "ADMIN"); err != nil {
		t.Fatalf("role change failed: %v", err)
	}

	rotated, err := engine.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	claims, err := engine.jwtManager.ParseAccess(rotated.AccessToken)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Role != "ADMIN" {
		t.Fatalf("expected refreshed claims to carry ADMIN, got %q", claims.Role)
	}
}
