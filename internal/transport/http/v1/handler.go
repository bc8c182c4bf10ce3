// Package v1 provides the JSON API the mobile client talks to.
package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/christianyates/DrupalGeoPicture/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/system/connect", h.Connect)
	e.POST("/api/user/login", h.Login)
	e.POST("/api/user/logout", h.Logout)
	e.POST("/api/file", h.CreateFile)
	e.POST("/api/node", h.CreateNode)
	e.GET("/api/node", h.ListNodes)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// sessionID extracts the session ID from the request's SESS* cookie.
// The cookie name itself is the session_name handed out at login.
func sessionID(c echo.Context) string {
	for _, cookie := range c.Request().Cookies() {
		if strings.HasPrefix(cookie.Name, "SESS") {
			return cookie.Value
		}
	}
	return ""
}
