package cache

import "time"

// Identity is the cached user snapshot. The Credential Store owns the
// authoritative record; this struct is what circulates through the engine,
// the cache, and the HTTP layer. It never carries the password hash.
type Identity struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// Entry is a single cache slot. ActiveAtCacheTime records the activation
// flag observed at the moment of caching; an inactive identity must never
// survive in the cache, so callers invalidate immediately after writing one.
type Entry struct {
	Identity          Identity
	CachedAt          time.Time
	ActiveAtCacheTime bool
}
