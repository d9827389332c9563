// Package middleware wires the two-tier gate into echo: EdgeGate does the
// stateless token check, RequireIdentity does the authoritative store-backed
// resolution, RequireRole gates on the resolved role. Ordering matters;
// each layer assumes the previous one ran.
package middleware
