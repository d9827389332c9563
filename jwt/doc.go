// Package jwt manages the dual-secret token pair: a short-lived access
// token and a long-lived refresh token, both HMAC-SHA256 signed JWTs with
// identical claim shapes ({sub, email, role, iat, exp}) but independent
// secrets and expiries. They are two separate capability types; the
// Manager never accepts one secret's token under the other's verifier.
package jwt
