// Package edge implements the stateless access-token verifier used by the
// request-gating layer. It checks the HMAC signature and the expiry and
// deliberately nothing more: no cache lookups, no Credential Store reads,
// no allocation-heavy paths, so it is safe in constrained runtimes.
//
// Because it never consults the store, its role claim can lag a database
// role change by up to one access-token TTL. That window is an accepted,
// bounded trade for statelessness at the edge. A stricter bound would need
// its own invalidation channel (a short deny-list) and is intentionally
// not implemented here; the full-service path's resolver closes the gap on
// every non-edge request.
package edge
