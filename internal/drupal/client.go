// Package drupal is the JSON HTTP client for the content-management
// backend. All endpoints are POST and exchange small JSON bodies; the
// session is carried as a cookie named after the backend session name.
package drupal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/christianyates/DrupalGeoPicture/internal/domain"
)

// Client is the backend API client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	sessionID   string
	sessionName string
}

// NewClient creates a new backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetSession sets the session cookie used on subsequent requests. Empty
// values clear the cookie.
func (c *Client) SetSession(name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionName = name
	c.sessionID = id
}

// ConnectResponse is the session envelope returned by connect and login.
type ConnectResponse struct {
	SessionID   string      `json:"sessid"`
	SessionName string      `json:"session_name"`
	User        domain.User `json:"user"`
}

// LoginRequest carries the credentials for api/user/login.
type LoginRequest struct {
	Name string `json:"name"`
	Pass string `json:"pass"`
}

// FileUpload is the inline file payload for api/file.
type FileUpload struct {
	Filename string `json:"filename"`
	File     string `json:"file"` // base64-encoded content
	UID      int    `json:"uid"`
}

// FileResponse is the backend's answer to a file upload.
type FileResponse struct {
	FID string `json:"fid"`
}

// FileRef references an uploaded file from a node.
type FileRef struct {
	FID string `json:"fid"`
}

// NodeLocation is the address block attached to a node.
type NodeLocation struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
}

// Node is the content record sent to api/node.
type Node struct {
	UID         int            `json:"uid"`
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Type        string         `json:"type"`
	FieldImages []FileRef      `json:"field_images"`
	Locations   []NodeLocation `json:"locations"`
}

// NodeResponse is the backend's answer to a node creation.
type NodeResponse struct {
	NID string `json:"nid"`
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Connect performs the anonymous connect call and returns the (possibly
// anonymous) session.
func (c *Client) Connect(ctx context.Context) (*ConnectResponse, error) {
	var resp ConnectResponse
	if err := c.post(ctx, "/api/system/connect", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with name and password.
func (c *Client) Login(ctx context.Context, name, pass string) (*ConnectResponse, error) {
	var resp ConnectResponse
	if err := c.post(ctx, "/api/user/login", LoginRequest{Name: name, Pass: pass}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/user/logout", struct{}{}, nil)
}

// CreateFile uploads a base64-encoded file and returns its identifier.
func (c *Client) CreateFile(ctx context.Context, file FileUpload) (*FileResponse, error) {
	req := struct {
		File FileUpload `json:"file"`
	}{File: file}
	var resp FileResponse
	if err := c.post(ctx, "/api/file", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateNode creates a content record and returns its identifier.
func (c *Client) CreateNode(ctx context.Context, node Node) (*NodeResponse, error) {
	req := struct {
		Node Node `json:"node"`
	}{Node: node}
	var resp NodeResponse
	if err := c.post(ctx, "/api/node", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends a JSON POST and decodes the response into out (when non-nil).
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	if c.sessionName != "" && c.sessionID != "" {
		httpReq.AddCookie(&http.Cookie{Name: c.sessionName, Value: c.sessionID})
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("backend error [%d]: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("backend error [%d]: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
