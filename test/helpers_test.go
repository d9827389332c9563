//go:build integration
// +build integration

package test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	brixauth "github.com/Paurakh977/BRIXA-sub000"
)

// memStore is an in-memory CredentialStore for end-to-end scenarios.
type memStore struct {
	mu    sync.Mutex
	users map[string]brixauth.Credential
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]brixauth.Credential)}
}

func (s *memStore) put(cred brixauth.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[cred.ID] = cred
}

func (s *memStore) FindByID(_ context.Context, id string) (*brixauth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	identity := cred.Identity
	return &identity, nil
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*brixauth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cred := range s.users {
		if strings.EqualFold(cred.Email, email) {
			out := cred
			return &out, nil
		}
	}
	return nil, nil
}

func (s *memStore) Count(_ context.Context, filter brixauth.CountFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, cred := range s.users {
		if filter.Role != "" && cred.Role != filter.Role {
			continue
		}
		if filter.Active != nil && cred.IsActive != *filter.Active {
			continue
		}
		n++
	}
	return n, nil
}

func (s *memStore) Update(_ context.Context, id string, fields brixauth.UpdateFields) (*brixauth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.users[id]
	if !ok {
		return nil, brixauth.ErrUserNotFound
	}
	if fields.Role != nil {
		cred.Role = *fields.Role
	}
	if fields.IsActive != nil {
		cred.IsActive = *fields.IsActive
	}
	if fields.IsVerified != nil {
		cred.IsVerified = *fields.IsVerified
	}
	if fields.PasswordHash != nil {
		cred.PasswordHash = *fields.PasswordHash
	}
	if fields.FirstName != nil {
		cred.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		cred.LastName = *fields.LastName
	}
	cred.UpdatedAt = time.Now()
	s.users[id] = cred
	identity := cred.Identity
	return &identity, nil
}

func (s *memStore) Create(_ context.Context, cred brixauth.Credential) (*brixauth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, cred.Email) {
			return nil, brixauth.ErrAccountExists
		}
	}
	s.users[cred.ID] = cred
	identity := cred.Identity
	return &identity, nil
}

func scenarioConfig() brixauth.Config {
	cfg := brixauth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("scenario-access-secret")
	cfg.JWT.RefreshSecret = []byte("scenario-refresh-secret")
	cfg.JWT.Issuer = "scenario"
	cfg.Password.Cost = 4
	return cfg
}

func seedScenarioUser(t *testing.T, store *memStore, id, email, role, plaintext string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	now := time.Now()
	store.put(brixauth.Credential{
		Identity: brixauth.Identity{
			ID:        id,
			Email:     email,
			Role:      role,
			IsActive:  active,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: string(hash),
	})
}

// newScenarioEngine builds an engine backed by memStore and miniredis, the
// full wiring an application would use minus Postgres.
func newScenarioEngine(t *testing.T, cfg brixauth.Config, store *memStore) (*brixauth.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	engine, err := brixauth.New().
		WithConfig(cfg).
		WithStore(store).
		WithRedis(rdb).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	t.Cleanup(func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	})

	return engine, mr
}
