package brixauth

import (
	"net/http"
	"time"
)

// SessionCookies describes the sessioncookies operation and its observable behavior.
//
// The access cookie is script-readable so browser clients can decode the
// token expiry for proactive refresh; the refresh cookie is HttpOnly. Both
// are built by the same attribute builder that [Engine.ClearSessionCookies]
// uses, so set and clear always agree on Path, Domain, Secure and SameSite.
func (e *Engine) SessionCookies(tokens *SessionTokens) []*http.Cookie {
	if e == nil || tokens == nil {
		return nil
	}
	access := e.sessionCookie(e.config.Cookie.AccessName, tokens.AccessToken, e.config.JWT.AccessTTL, false)
	refresh := e.sessionCookie(e.config.Cookie.RefreshName, tokens.RefreshToken, e.config.JWT.RefreshTTL, true)
	return []*http.Cookie{access, refresh}
}

// ClearSessionCookies describes the clearsessioncookies operation and its observable behavior.
//
// Clearing reuses the exact attribute set used when the cookies were
// written. Browsers match expiring cookies on name, path and domain, so a
// clear with different attributes would leave the originals in place.
func (e *Engine) ClearSessionCookies() []*http.Cookie {
	if e == nil {
		return nil
	}
	access := e.sessionCookie(e.config.Cookie.AccessName, "", -1, false)
	refresh := e.sessionCookie(e.config.Cookie.RefreshName, "", -1, true)
	return []*http.Cookie{access, refresh}
}

// sessionCookie is the single place cookie attributes are assembled. A
// negative maxAge produces the clearing form of the same cookie.
func (e *Engine) sessionCookie(name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     e.config.Cookie.Path,
		Domain:   e.config.Cookie.Domain,
		Secure:   e.config.Cookie.Secure,
		HttpOnly: httpOnly,
		SameSite: e.config.Cookie.SameSite,
	}
	if maxAge < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(maxAge / time.Second)
	}
	return c
}
