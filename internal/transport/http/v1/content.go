package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type fileRequest struct {
	File struct {
		Filename string `json:"filename"`
		File     string `json:"file"`
		UID      int    `json:"uid"`
	} `json:"file"`
}

type nodeRequest struct {
	Node struct {
		UID         int             `json:"uid"`
		Name        string          `json:"name"`
		Title       string          `json:"title"`
		Body        string          `json:"body"`
		Type        string          `json:"type"`
		FieldImages json.RawMessage `json:"field_images"`
		Locations   json.RawMessage `json:"locations"`
	} `json:"node"`
}

// CreateFile stores an uploaded picture.
// POST /api/file
func (h *Handler) CreateFile(c echo.Context) error {
	ctx := c.Request().Context()

	info, err := h.service.Authenticate(ctx, sessionID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if info == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Access denied."})
	}

	var req fileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	// The uid in the body is informational; the session decides ownership.
	fid, err := h.service.SaveFile(ctx, info.UID, req.File.Filename, req.File.File)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"fid": fid})
}

// CreateNode publishes a post.
// POST /api/node
func (h *Handler) CreateNode(c echo.Context) error {
	ctx := c.Request().Context()

	info, err := h.service.Authenticate(ctx, sessionID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if info == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Access denied."})
	}

	var req nodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	n := req.Node
	nid, err := h.service.PublishNode(ctx, info.UID, info.Name, n.Title, n.Body, n.Type, n.FieldImages, n.Locations)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"nid": nid})
}

// ListNodes returns recent posts, newest first.
// GET /api/node
func (h *Handler) ListNodes(c echo.Context) error {
	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	ctx := c.Request().Context()
	nodes, err := h.service.RecentNodes(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	type nodeView struct {
		NID         string          `json:"nid"`
		UID         int             `json:"uid"`
		Name        string          `json:"name"`
		Title       string          `json:"title"`
		Body        string          `json:"body"`
		Type        string          `json:"type"`
		FieldImages json.RawMessage `json:"field_images,omitempty"`
		Locations   json.RawMessage `json:"locations,omitempty"`
	}
	views := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, nodeView{
			NID:         strconv.FormatInt(n.NID, 10),
			UID:         n.UID,
			Name:        n.Name,
			Title:       n.Title,
			Body:        n.Body,
			Type:        n.Type,
			FieldImages: n.FieldImages,
			Locations:   n.Locations,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"nodes": views})
}
