package internaldefs

import (
	brixauth "github.com/Paurakh977/BRIXA-sub000"
)

// CounterDef defines a public type used by brixauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   brixauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by brixauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   brixauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: brixauth.MetricLoginSuccess, Name: "brixa_login_success_total", Help: "Successful login attempts."},
	{ID: brixauth.MetricLoginFailure, Name: "brixa_login_failure_total", Help: "Failed login attempts."},
	{ID: brixauth.MetricLoginRateLimited, Name: "brixa_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: brixauth.MetricRefreshSuccess, Name: "brixa_refresh_success_total", Help: "Successful refresh operations."},
	{ID: brixauth.MetricRefreshFailure, Name: "brixa_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: brixauth.MetricRefreshRateLimited, Name: "brixa_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: brixauth.MetricSessionIssued, Name: "brixa_session_issued_total", Help: "Issued token pairs."},
	{ID: brixauth.MetricLogout, Name: "brixa_logout_total", Help: "Logout operations."},
	{ID: brixauth.MetricCacheHit, Name: "brixa_cache_hit_total", Help: "Identity cache hits."},
	{ID: brixauth.MetricCacheMiss, Name: "brixa_cache_miss_total", Help: "Identity cache misses."},
	{ID: brixauth.MetricCacheStale, Name: "brixa_cache_stale_total", Help: "Cache entries discarded by the role staleness check."},
	{ID: brixauth.MetricCacheInvalidated, Name: "brixa_cache_invalidated_total", Help: "Explicit cache invalidations."},
	{ID: brixauth.MetricResolveNotFound, Name: "brixa_resolve_not_found_total", Help: "Resolutions failing because the subject no longer exists."},
	{ID: brixauth.MetricResolveInactive, Name: "brixa_resolve_inactive_total", Help: "Resolutions failing because the account is inactive."},
	{ID: brixauth.MetricAccountCreated, Name: "brixa_account_created_total", Help: "Created accounts."},
	{ID: brixauth.MetricRoleChanged, Name: "brixa_role_changed_total", Help: "Administrative role changes."},
	{ID: brixauth.MetricStatusChanged, Name: "brixa_status_changed_total", Help: "Administrative activation changes."},
	{ID: brixauth.MetricPasswordChanged, Name: "brixa_password_changed_total", Help: "Successful password changes."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: brixauth.MetricResolveLatency, Name: "brixa_resolve_latency_seconds", Help: "Resolve latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
