// Package client implements the calling side of the session protocol: a
// cookie-jar HTTP client that refreshes the access token shortly before it
// expires and recovers from a 401 with exactly one refresh and one retry.
//
// The client never inspects token signatures. It decodes the access token
// expiry locally only to schedule refreshes; trust decisions belong to the
// server. Holding no refresh token short-circuits every session operation
// to [ErrUnauthenticated] with zero network traffic.
package client
