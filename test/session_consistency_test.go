//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"

	brixauth "github.com/Paurakh977/BRIXA-sub000"
)

// An access token signed before a role change must resolve to the new role:
// the store is authoritative, the signature only proves who the caller is.
func TestRoleChangeVisibleToOutstandingToken(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedScenarioUser(t, store, "u1", "client@example.com", "CLIENT", "correct horse", true)
	engine, _ := newScenarioEngine(t, scenarioConfig(), store)

	result, err := engine.Login(ctx, "client@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := engine.VerifyAccess(result.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Role != "CLIENT" {
		t.Fatalf("expected CLIENT in claims, got %q", claims.Role)
	}

	// Warm the cache, then promote.
	if _, err := engine.Resolve(ctx, claims); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if err := engine.SetRole(ctx, "u1", "ADMIN"); err != nil {
		t.Fatalf("set role failed: %v", err)
	}

	identity, err := engine.Resolve(ctx, claims)
	if err != nil {
		t.Fatalf("resolve after promotion failed: %v", err)
	}
	if identity.Role != "ADMIN" {
		t.Fatalf("expected ADMIN from store, got %q", identity.Role)
	}
}

func TestDeactivationLocksOutOutstandingToken(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedScenarioUser(t, store, "u1", "client@example.com", "CLIENT", "correct horse", true)
	engine, _ := newScenarioEngine(t, scenarioConfig(), store)

	result, err := engine.Login(ctx, "client@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := engine.VerifyAccess(result.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if _, err := engine.Resolve(ctx, claims); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if err := engine.SetActive(ctx, "u1", false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := engine.Resolve(ctx, claims); !errors.Is(err, brixauth.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
	if engine.Cache().Len() != 0 {
		t.Fatal("inactive identity must not be cached")
	}

	// The refresh path is locked out too.
	if _, err := engine.Refresh(ctx, result.RefreshToken); !errors.Is(err, brixauth.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive from refresh, got %v", err)
	}
}

func TestRefreshSignsLatestRole(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedScenarioUser(t, store, "u1", "client@example.com", "CLIENT", "correct horse", true)
	engine, _ := newScenarioEngine(t, scenarioConfig(), store)

	result, err := engine.Login(ctx, "client@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := engine.SetRole(ctx, "u1", "ADMIN"); err != nil {
		t.Fatalf("set role failed: %v", err)
	}

	tokens, err := engine.Refresh(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	claims, err := engine.VerifyAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Role != "ADMIN" {
		t.Fatalf("expected refreshed token to carry ADMIN, got %q", claims.Role)
	}
}

// Logout clears the cache entry but the token stays cryptographically valid;
// the next resolution simply repopulates from the store.
func TestLogoutIsCacheOnly(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedScenarioUser(t, store, "u1", "client@example.com", "CLIENT", "correct horse", true)
	engine, _ := newScenarioEngine(t, scenarioConfig(), store)

	result, err := engine.Login(ctx, "client@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := engine.VerifyAccess(result.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if _, err := engine.Resolve(ctx, claims); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if engine.Cache().Len() != 1 {
		t.Fatalf("expected a cached identity, got %d entries", engine.Cache().Len())
	}

	engine.Logout(ctx, "u1")
	if engine.Cache().Len() != 0 {
		t.Fatal("logout must clear the cache entry")
	}

	identity, err := engine.Resolve(ctx, claims)
	if err != nil {
		t.Fatalf("resolve after logout failed: %v", err)
	}
	if identity.ID != "u1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestRegisterThenLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine, _ := newScenarioEngine(t, scenarioConfig(), store)

	created, err := engine.Register(ctx, brixauth.RegisterInput{
		Email:    "New@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if created.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %q", created.Email)
	}

	result, err := engine.Login(ctx, "new@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login after register failed: %v", err)
	}
	if result.User.ID != created.ID {
		t.Fatalf("login resolved a different user: %q vs %q", result.User.ID, created.ID)
	}
}
