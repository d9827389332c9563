package brixauth

import (
	"errors"
	"net/http"
	"time"
)

// Config defines a public type used by brixauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT      JWTConfig
	Cache    CacheConfig
	Cookie   CookieConfig
	Password PasswordConfig
	Account  AccountConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by brixauth APIs.
//
// AccessSecret and RefreshSecret must be distinct: the two tokens are
// independent signed capabilities, not one token with two lifetimes.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig defines a public type used by brixauth APIs.
//
// TTL bounds how stale a cached identity may get before a forced re-read;
// SweepInterval bounds memory only, never correctness.
type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by brixauth APIs.
//
// The access cookie is deliberately script-readable so clients can decode
// the expiry locally for proactive refresh; the refresh cookie is always
// HttpOnly. Attribute values are part of the protocol contract: clearing
// uses the exact same set, because browsers silently ignore a clear whose
// attributes differ from the original set.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Path        string
	Domain      string
	Secure      bool
	SameSite    http.SameSite
}

// PasswordConfig defines a public type used by brixauth APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Cost      int
	MinLength int
}

// AccountConfig defines a public type used by brixauth APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	Enabled     bool
	DefaultRole string
}

// SecurityConfig defines a public type used by brixauth APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	ProductionMode          bool
	EnableIPThrottle        bool
	EnableRefreshThrottle   bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
}

// AuditConfig defines a public type used by brixauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by brixauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Secrets are empty and
// must be filled in before [Config.Validate] passes.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Leeway:     30 * time.Second,
		},
		Cache: CacheConfig{
			TTL:           5 * time.Minute,
			SweepInterval: 10 * time.Minute,
		},
		Cookie: CookieConfig{
			AccessName:  "brixa_access",
			RefreshName: "brixa_refresh",
			Path:        "/",
			Secure:      false,
			SameSite:    http.SameSiteLaxMode,
		},
		Password: PasswordConfig{
			Cost:      12,
			MinLength: 8,
		},
		Account: AccountConfig{
			Enabled:     true,
			DefaultRole: "CLIENT",
		},
		Security: SecurityConfig{
			ProductionMode:          false,
			EnableIPThrottle:        true,
			EnableRefreshThrottle:   true,
			MaxLoginAttempts:        5,
			LoginCooldownDuration:   15 * time.Minute,
			MaxRefreshAttempts:      20,
			RefreshCooldownDuration: time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return ErrSigningSecretMissing
	}
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("access and refresh secrets must be distinct")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("invalid TTL configuration")
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("invalid leeway configuration")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache TTL must be positive")
	}
	if c.Cache.SweepInterval <= 0 {
		return errors.New("cache sweep interval must be positive")
	}
	if c.Cookie.AccessName == "" || c.Cookie.RefreshName == "" {
		return errors.New("cookie names must be set")
	}
	if c.Cookie.AccessName == c.Cookie.RefreshName {
		return errors.New("access and refresh cookie names must differ")
	}
	if c.Cookie.Path == "" {
		return errors.New("cookie path must be set")
	}
	if c.Security.ProductionMode && !c.Cookie.Secure {
		return errors.New("production mode requires secure cookies")
	}
	if c.Password.Cost < 4 || c.Password.Cost > 31 {
		return errors.New("invalid bcrypt cost")
	}
	if c.Password.MinLength < 8 {
		return errors.New("password minimum length must be at least 8")
	}
	if c.Security.MaxLoginAttempts <= 0 || c.Security.LoginCooldownDuration <= 0 {
		return errors.New("invalid login throttle configuration")
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 || c.Security.RefreshCooldownDuration <= 0 {
			return errors.New("invalid refresh throttle configuration")
		}
	}
	return nil
}
