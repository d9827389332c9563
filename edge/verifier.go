package edge

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/Paurakh977/BRIXA-sub000/jwt"
)

var (
	// ErrMissingSecret reports that the verifier was constructed without an
	// access-token secret. This is a configuration error: the gating layer
	// must refuse all traffic rather than guess at open or closed.
	ErrMissingSecret = errors.New("edge verifier: access secret missing")
	// ErrInvalidToken covers all token faults: malformed, wrong signature,
	// expired. Recoverable by re-authenticating.
	ErrInvalidToken = errors.New("edge verifier: invalid token")
)

// Verifier checks access-token signature and expiry, and nothing else. It
// performs no I/O and holds no references to the cache or the Credential
// Store, so it can run in a gating layer ahead of full request handling.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

// New creates a [Verifier] for the given access-token secret. An empty
// secret is rejected with [ErrMissingSecret]; construction is the single
// fail-loud point for this misconfiguration.
func New(accessSecret []byte, leeway time.Duration) (*Verifier, error) {
	if len(accessSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if leeway < 0 {
		leeway = 0
	}
	return &Verifier{secret: append([]byte(nil), accessSecret...), leeway: leeway}, nil
}

// Verify validates tokenStr against the access secret and its expiry.
// Any failure collapses to [ErrInvalidToken]; no detail leaks to the caller.
func (v *Verifier) Verify(tokenStr string) (*jwt.Claims, error) {
	options := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
	}
	if v.leeway > 0 {
		options = append(options, jwtlib.WithLeeway(v.leeway))
	}

	parser := jwtlib.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &jwt.Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IsExpiring reports whether the token expires within buffer from now. The
// gating layer uses it to flag "refresh needed" without failing the request.
func (v *Verifier) IsExpiring(claims *jwt.Claims, buffer time.Duration) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) <= buffer
}
