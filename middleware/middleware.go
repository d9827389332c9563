package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	brixauth "github.com/Paurakh977/BRIXA-sub000"
	"github.com/Paurakh977/BRIXA-sub000/edge"
	"github.com/Paurakh977/BRIXA-sub000/jwt"
)

const (
	claimsContextKey   = "brixauth.claims"
	identityContextKey = "brixauth.identity"

	// RefreshSuggestedHeader tells clients their access token verifies but
	// is inside the expiry buffer; they should refresh soon.
	RefreshSuggestedHeader = "X-Refresh-Suggested"
)

// GateConfig defines a public type used by brixauth APIs.
//
// GateConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GateConfig struct {
	AccessCookieName string
	ExpiryBuffer     time.Duration
}

// EdgeGate returns middleware that verifies the access token with a
// stateless verifier: signature, expiry and payload shape only, no
// storage reads. The token is taken from the access cookie or a bearer
// header. A nil verifier means the gate was misconfigured (usually a
// missing signing secret); every request then fails loudly with 503
// rather than passing unverified traffic or failing ambiguously with 401.
func EdgeGate(verifier *edge.Verifier, cfg GateConfig) echo.MiddlewareFunc {
	if cfg.AccessCookieName == "" {
		cfg.AccessCookieName = "brixa_access"
	}
	if cfg.ExpiryBuffer <= 0 {
		cfg.ExpiryBuffer = 60 * time.Second
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				slog.Error("edge gate has no verifier, refusing all gated traffic")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "authentication unavailable")
			}

			token, ok := accessToken(c, cfg.AccessCookieName)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if verifier.IsExpiring(claims, cfg.ExpiryBuffer) {
				c.Response().Header().Set(RefreshSuggestedHeader, "true")
			}

			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// RequireIdentity returns middleware that resolves the verified claims to
// the authoritative server-side identity. It must run after [EdgeGate].
// Accounts that were removed or deactivated since the token was signed
// fail here with 401 even though the signature still verifies.
func RequireIdentity(engine *brixauth.Engine) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			identity, err := engine.Resolve(c.Request().Context(), claims)
			if err != nil {
				switch {
				case errors.Is(err, brixauth.ErrUserNotFound),
					errors.Is(err, brixauth.ErrAccountInactive),
					errors.Is(err, brixauth.ErrTokenInvalid):
					return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
				default:
					slog.Error("identity resolution failed", "error", err)
					return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
				}
			}

			c.Set(identityContextKey, identity)
			return next(c)
		}
	}
}

// RequireRole returns middleware that gates a route on the resolved
// identity's role. The role comes from the store-backed identity, never
// from the token, so an administrative role change takes effect on the
// next resolution. It must run after [RequireIdentity].
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			if _, ok := allowed[identity.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// ClaimsFrom describes the claimsfrom operation and its observable behavior.
//
// ClaimsFrom does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ClaimsFrom(c echo.Context) (*jwt.Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*jwt.Claims)
	return claims, ok
}

// IdentityFrom describes the identityfrom operation and its observable behavior.
//
// IdentityFrom does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func IdentityFrom(c echo.Context) (*brixauth.Identity, bool) {
	identity, ok := c.Get(identityContextKey).(*brixauth.Identity)
	return identity, ok
}

func accessToken(c echo.Context, cookieName string) (string, bool) {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return bearerToken(c.Request().Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}
