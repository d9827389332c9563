package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	brixauth "github.com/Paurakh977/BRIXA-sub000"
	"github.com/Paurakh977/BRIXA-sub000/middleware"
)

// AuthHandler serves the session lifecycle endpoints: login, refresh,
// logout, register and the authenticated profile read.
type AuthHandler struct {
	engine            *brixauth.Engine
	refreshCookieName string
}

// NewAuthHandler describes the newauthhandler operation and its observable behavior.
//
// NewAuthHandler does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewAuthHandler(engine *brixauth.Engine, refreshCookieName string) *AuthHandler {
	if refreshCookieName == "" {
		refreshCookieName = "brixa_refresh"
	}
	return &AuthHandler{
		engine:            engine,
		refreshCookieName: refreshCookieName,
	}
}

// LoginRequest defines a public type used by brixauth APIs.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest defines a public type used by brixauth APIs.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UserResponse defines a public type used by brixauth APIs.
type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func userResponse(identity brixauth.Identity) UserResponse {
	return UserResponse{
		ID:         identity.ID,
		Email:      identity.Email,
		Role:       identity.Role,
		IsActive:   identity.IsActive,
		IsVerified: identity.IsVerified,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		CreatedAt:  identity.CreatedAt,
	}
}

// requestContext returns the request context with the client IP and
// User-Agent attached so the engine's audit records carry them.
func requestContext(c echo.Context) context.Context {
	ctx := brixauth.WithClientIP(c.Request().Context(), c.RealIP())
	return brixauth.WithUserAgent(ctx, c.Request().UserAgent())
}

// Login handles POST /auth/login. Tokens travel only as cookies, never in
// the response body.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := requestContext(c)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.engine.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, brixauth.ErrLoginRateLimited):
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts")
		case errors.Is(err, brixauth.ErrInvalidCredentials),
			errors.Is(err, brixauth.ErrAccountInactive),
			errors.Is(err, brixauth.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		default:
			slog.ErrorContext(ctx, "login failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	for _, cookie := range h.engine.SessionCookies(&result.SessionTokens) {
		c.SetCookie(cookie)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"user": userResponse(result.User),
	})
}

// Refresh handles POST /auth/refresh. The refresh token arrives in its
// HttpOnly cookie; success rewrites both cookies with freshly signed
// tokens, failure clears them so clients fall back to login.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := requestContext(c)

	cookie, err := c.Cookie(h.refreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no refresh token")
	}

	tokens, err := h.engine.Refresh(ctx, cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, brixauth.ErrRefreshRateLimited):
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts")
		case errors.Is(err, brixauth.ErrRefreshInvalid),
			errors.Is(err, brixauth.ErrUserNotFound),
			errors.Is(err, brixauth.ErrAccountInactive):
			for _, cleared := range h.engine.ClearSessionCookies() {
				c.SetCookie(cleared)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		default:
			slog.ErrorContext(ctx, "refresh failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	for _, cookie := range h.engine.SessionCookies(tokens) {
		c.SetCookie(cookie)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// Logout handles POST /auth/logout: server-side cache invalidation plus
// cookie clearing, the two halves of the logout contract.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := requestContext(c)

	if claims, ok := middleware.ClaimsFrom(c); ok {
		h.engine.Logout(ctx, claims.Subject)
	}

	for _, cleared := range h.engine.ClearSessionCookies() {
		c.SetCookie(cleared)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	ctx := requestContext(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	identity, err := h.engine.Register(ctx, brixauth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, brixauth.ErrAccountExists):
			return echo.NewHTTPError(http.StatusConflict, "account already exists")
		case errors.Is(err, brixauth.ErrPasswordPolicy):
			return echo.NewHTTPError(http.StatusBadRequest, "password does not meet policy")
		case errors.Is(err, brixauth.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid email")
		default:
			slog.ErrorContext(ctx, "registration failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"ok":   true,
		"user": userResponse(*identity),
	})
}

// Me handles GET /auth/me. It runs behind [middleware.RequireIdentity], so
// the response always reflects the store-backed identity, not token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"user": userResponse(*identity),
	})
}
