// Package cache implements the in-memory identity cache that lets the
// engine skip a database read on most authenticated requests.
//
// Entries are keyed by user id and expire after a fixed TTL. Expiry is
// enforced twice: lazily and authoritatively inside Get, and periodically
// by a sweeper goroutine that only bounds memory. Entries are never
// persisted; invalidation is the write-path's responsibility.
package cache
