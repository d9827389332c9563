// Package postgres is the pgx-backed credential store. Reads follow the
// hash boundary: lookup by id never selects password_hash, lookup by email
// does. Writes are plain row updates; cache invalidation is the engine's
// job, the store knows nothing about caching.
package postgres
