package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/christianyates/DrupalGeoPicture/internal/service"
)

type sessionResponse struct {
	SessionID   string       `json:"sessid"`
	SessionName string       `json:"session_name"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	UID  int    `json:"uid"`
	Name string `json:"name"`
}

func toSessionResponse(info *service.SessionInfo) sessionResponse {
	return sessionResponse{
		SessionID:   info.SessionID,
		SessionName: info.SessionName,
		User:        userResponse{UID: info.UID, Name: info.Name},
	}
}

// Connect resumes or opens a session.
// POST /api/system/connect
func (h *Handler) Connect(c echo.Context) error {
	ctx := c.Request().Context()

	info, err := h.service.Connect(ctx, sessionID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toSessionResponse(info))
}

// Login opens an authenticated session.
// POST /api/user/login
func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
		Pass string `json:"pass"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	info, err := h.service.Login(ctx, req.Name, req.Pass)
	if err != nil {
		if errors.Is(err, service.ErrWrongCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toSessionResponse(info))
}

// Logout ends the session carried in the request cookie.
// POST /api/user/logout
func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.service.Logout(ctx, sessionID(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
