package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrUnauthenticated is an exported constant or variable used by the session client.
	ErrUnauthenticated = errors.New("no session")
	// ErrRefreshFailed is an exported constant or variable used by the session client.
	ErrRefreshFailed = errors.New("session refresh failed")
)

const (
	defaultRefreshPath      = "/auth/refresh"
	defaultAccessCookieName = "brixa_access"
	defaultRefreshCookie    = "brixa_refresh"
	defaultCheckInterval    = 2 * time.Minute
	defaultExpiryBuffer     = 60 * time.Second
)

// Config defines a public type used by the session client.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL           string
	RefreshPath       string
	AccessCookieName  string
	RefreshCookieName string
	CheckInterval     time.Duration
	ExpiryBuffer      time.Duration
	HTTPTimeout       time.Duration
}

// Client is a session-aware HTTP client. It keeps tokens in a cookie jar,
// silently refreshes the access token shortly before it expires, and on a
// 401 performs exactly one refresh followed by exactly one retry.
//
// Client instances are safe for concurrent use.
type Client struct {
	config  Config
	http    *http.Client
	baseURL *url.URL

	mu        sync.Mutex
	refreshMu sync.Mutex

	stop     chan struct{}
	stopOnce sync.Once
	started  bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = defaultRefreshPath
	}
	if cfg.AccessCookieName == "" {
		cfg.AccessCookieName = defaultAccessCookieName
	}
	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = defaultRefreshCookie
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}
	if cfg.ExpiryBuffer <= 0 {
		cfg.ExpiryBuffer = defaultExpiryBuffer
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{
		Jar:     jar,
		Timeout: cfg.HTTPTimeout,
	}

	return &Client{
		config:  cfg,
		http:    httpClient,
		baseURL: base,
		stop:    make(chan struct{}),
	}, nil
}

// HTTPClient exposes the underlying client so callers can install the jar
// into other transports. Mutating the jar directly bypasses the refresh
// protocol.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Start launches the background refresh loop. The loop wakes every
// CheckInterval, and refreshes when the access token is missing or inside
// the expiry buffer while a refresh token is still present. Calling Start
// twice is a no-op.
func (c *Client) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	go c.refreshLoop()
}

// Close stops the background refresh loop. It is safe to call multiple
// times and safe to call without Start.
func (c *Client) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) refreshLoop() {
	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if c.needsRefresh() && c.hasRefreshCookie() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				_ = c.refresh(ctx, false)
				cancel()
			}
		case <-c.stop:
			return
		}
	}
}

// EnsureSession describes the ensuresession operation and its observable behavior.
//
// It reports [ErrUnauthenticated] without any network traffic when no
// refresh token is held; otherwise it refreshes only if the access token
// is missing or about to expire.
func (c *Client) EnsureSession(ctx context.Context) error {
	if !c.hasRefreshCookie() {
		return ErrUnauthenticated
	}
	if !c.needsRefresh() {
		return nil
	}
	return c.refresh(ctx, false)
}

// Do describes the do operation and its observable behavior.
//
// Before sending, the access token expiry is checked locally and a silent
// refresh happens when it falls inside the buffer. After sending, a 401
// triggers exactly one refresh and one retry; a second 401 is returned to
// the caller as-is. When the refresh itself fails the original 401
// response is surfaced unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.needsRefresh() && c.hasRefreshCookie() {
		// Best effort: a failed proactive refresh still lets the request
		// through, the server has the final word.
		_ = c.refresh(req.Context(), false)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if !c.hasRefreshCookie() {
		return resp, nil
	}

	// A 401 means the server rejected the token even if it looks fresh
	// locally, so the refresh is forced.
	if err := c.refresh(req.Context(), true); err != nil {
		return resp, nil
	}

	retry, err := rewindRequest(req)
	if err != nil {
		return resp, nil
	}
	resp.Body.Close()

	return c.http.Do(retry)
}

// rewindRequest clones req for the single post-refresh retry. Requests with
// a consumed one-shot body cannot be replayed and fail here.
func rewindRequest(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	retry.Body = body
	return retry, nil
}

// refresh posts to the refresh endpoint. Concurrent callers serialize on
// refreshMu; an unforced loser of the race re-checks the access token
// first so one server round trip serves both.
func (c *Client) refresh(ctx context.Context, force bool) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if !force && !c.needsRefresh() {
		return nil
	}

	refreshURL := c.baseURL.JoinPath(c.config.RefreshPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, refreshURL.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrRefreshFailed
	}
	return nil
}

// needsRefresh reports whether the access token is absent or expires
// within the configured buffer. The expiry is read from the token itself
// without signature verification; the client holds no secrets and the
// server re-verifies everything anyway.
func (c *Client) needsRefresh() bool {
	cookie := c.cookieByName(c.config.AccessCookieName)
	if cookie == nil || cookie.Value == "" {
		return true
	}
	exp, err := tokenExpiry(cookie.Value)
	if err != nil {
		return true
	}
	return time.Until(exp) <= c.config.ExpiryBuffer
}

func (c *Client) hasRefreshCookie() bool {
	cookie := c.cookieByName(c.config.RefreshCookieName)
	return cookie != nil && cookie.Value != ""
}

func (c *Client) cookieByName(name string) *http.Cookie {
	for _, cookie := range c.http.Jar.Cookies(c.baseURL) {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func tokenExpiry(tokenStr string) (time.Time, error) {
	var claims jwtlib.RegisteredClaims
	parser := jwtlib.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}
