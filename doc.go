// Package brixauth provides the BRIXA authentication and session-consistency
// engine: dual-secret JWT issuance (short-lived access, long-lived refresh),
// a process-wide identity cache with invalidation-on-write and
// stale-detection-on-read, and an identity resolver that guarantees role and
// activation changes take effect on the very next request even while signed
// tokens carrying older claims are still circulating.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// brixauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Identity, SessionTokens, MetricsSnapshot). Token signing
// lives in jwt/, the TTL cache in cache/, the I/O-free edge verifier in
// edge/, the client-side refresh protocol in client/, and HTTP plumbing in
// handler/ and middleware/. Rate limiting coordination lives under internal/
// and is never exported.
//
// # Consistency contract
//
// Resolve is the hot path. A cache hit whose role matches the token's claim
// completes without any database round-trip; a role mismatch or an expired
// entry forces exactly one Credential Store read, and the store's role is
// always authoritative over the token's. Every write that changes role,
// active status, or verification status invalidates the user's cache entry
// before it returns.
package brixauth
