package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	brixauth "github.com/Paurakh977/BRIXA-sub000"
)

// AdminHandler serves the administrative account mutations. Every mutation
// goes through the engine, which writes the store first and then drops the
// user's cache entry, so the change is visible on the next resolution even
// to sessions holding still-valid tokens.
type AdminHandler struct {
	engine *brixauth.Engine
}

// NewAdminHandler describes the newadminhandler operation and its observable behavior.
//
// NewAdminHandler does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewAdminHandler(engine *brixauth.Engine) *AdminHandler {
	return &AdminHandler{engine: engine}
}

// RoleRequest defines a public type used by brixauth APIs.
type RoleRequest struct {
	Role string `json:"role"`
}

// ActiveRequest defines a public type used by brixauth APIs.
type ActiveRequest struct {
	Active bool `json:"active"`
}

// SetRole handles PUT /admin/users/:id/role.
func (h *AdminHandler) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.engine.SetRole(ctx, userID, req.Role); err != nil {
		return h.mutationError(ctx, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// SetActive handles PUT /admin/users/:id/active. Deactivation ends the
// user's ability to resolve on the very next request; their outstanding
// tokens keep verifying at the edge until they expire, which is the
// accepted staleness bound for edge-only routes.
func (h *AdminHandler) SetActive(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	var req ActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.engine.SetActive(ctx, userID, req.Active); err != nil {
		return h.mutationError(ctx, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// MarkVerified handles PUT /admin/users/:id/verified.
func (h *AdminHandler) MarkVerified(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	if err := h.engine.MarkVerified(ctx, userID); err != nil {
		return h.mutationError(ctx, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (h *AdminHandler) mutationError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, brixauth.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, brixauth.ErrInvalidRole):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
	default:
		slog.ErrorContext(ctx, "account mutation failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
