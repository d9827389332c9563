package brixauth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Paurakh977/BRIXA-sub000/jwt"
	"github.com/Paurakh977/BRIXA-sub000/password"
)

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret")
	cfg.JWT.Issuer = "test"
	cfg.Password.Cost = 4
	return cfg
}

func newTestHasher(t *testing.T) *password.Hasher {
	t.Helper()
	h, err := password.NewHasher(password.Config{Cost: 4, MinLength: 8})
	if err != nil {
		t.Fatalf("hasher init failed: %v", err)
	}
	return h
}

// mockStore is an in-memory CredentialStore that counts reads so tests can
// assert cache behavior.
type mockStore struct {
	mu            sync.Mutex
	users         map[string]Credential
	findByIDCalls int
	findByIDErr   error
}

func newMockStore() *mockStore {
	return &mockStore{users: make(map[string]Credential)}
}

func (s *mockStore) put(cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[cred.ID] = cred
}

func (s *mockStore) idCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByIDCalls
}

func (s *mockStore) FindByID(_ context.Context, id string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findByIDCalls++
	if s.findByIDErr != nil {
		return nil, s.findByIDErr
	}
	cred, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	identity := cred.Identity
	return &identity, nil
}

func (s *mockStore) FindByEmail(_ context.Context, email string) (*Credential, error) {
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

func (s *mockStore) Count(_ context.Context, filter CountFilter) (int64, error) {
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

func (s *mockStore) Update(_ context.Context, id string, fields UpdateFields) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
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

func (s *mockStore) Create(_ context.Context, cred Credential) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, cred.Email) {
			return nil, ErrAccountExists
		}
	}
	s.users[cred.ID] = cred
	identity := cred.Identity
	return &identity, nil
}

func seedUser(t *testing.T, store *mockStore, id, email, role, plaintext string, active bool) {
	t.Helper()
	hasher := newTestHasher(t)
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	now := time.Now()
	store.put(Credential{
		Identity: Identity{
			ID:        id,
			Email:     email,
			Role:      role,
			IsActive:  active,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	})
}

// mustClaims issues a token pair for userID and returns the parsed access
// claims, the shape handlers see after edge verification.
func mustClaims(t *testing.T, engine *Engine, userID string) *jwt.Claims {
	t.Helper()
	tokens, err := engine.IssueSession(context.Background(), userID)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	claims, err := engine.jwtManager.ParseAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return claims
}

func newTestEngine(t *testing.T, store *mockStore) *Engine {
	t.Helper()
	engine, err := New().
		WithConfig(testConfig()).
		WithStore(store).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
