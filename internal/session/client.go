// Package session tracks the single backend session: anonymous connect,
// login, logout, and the authenticated/ended events other components
// subscribe to.
package session

import (
	"context"
	"log"
	"sync"

	"github.com/christianyates/DrupalGeoPicture/internal/domain"
	"github.com/christianyates/DrupalGeoPicture/internal/drupal"
)

// LoginHandler is invoked after an authenticated session is established.
type LoginHandler func(user domain.User)

// LogoutHandler is invoked after the session has ended.
type LogoutHandler func()

// Client manages session state against the backend. Handlers registered
// with OnLogin/OnLogout are invoked in registration order.
type Client struct {
	api *drupal.Client

	mu             sync.Mutex
	current        domain.Session
	loginHandlers  []LoginHandler
	logoutHandlers []LogoutHandler
}

// NewClient creates a session client over the backend API client.
func NewClient(api *drupal.Client) *Client {
	return &Client{api: api}
}

// OnLogin registers a handler for authenticated-session events.
func (c *Client) OnLogin(fn LoginHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginHandlers = append(c.loginHandlers, fn)
}

// OnLogout registers a handler for session-ended events.
func (c *Client) OnLogout(fn LogoutHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoutHandlers = append(c.logoutHandlers, fn)
}

// Current returns a copy of the current session.
func (c *Client) Current() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// IsAuthenticated reports whether the current session belongs to a
// non-anonymous user.
func (c *Client) IsAuthenticated() bool {
	return c.Current().Authenticated()
}

// Initialize performs the anonymous connect call. If the backend already
// knows an authenticated user for this client, login handlers fire.
func (c *Client) Initialize(ctx context.Context) error {
	resp, err := c.api.Connect(ctx)
	if err != nil {
		return err
	}
	c.store(*resp)
	if resp.User.UID != 0 {
		c.fireLogin(resp.User)
	}
	return nil
}

// Login authenticates with the backend. On failure the backend's error is
// returned verbatim and the current session is left untouched.
func (c *Client) Login(ctx context.Context, name, pass string) error {
	resp, err := c.api.Login(ctx, name, pass)
	if err != nil {
		return err
	}
	c.store(*resp)
	c.fireLogin(resp.User)
	return nil
}

// Logout ends the session. Local state is cleared regardless of the
// backend response; afterwards a fresh anonymous session is requested on
// a best-effort basis.
func (c *Client) Logout(ctx context.Context) {
	if err := c.api.Logout(ctx); err != nil {
		log.Printf("WARN: logout request failed: %v", err)
	}

	c.mu.Lock()
	c.current = domain.Session{}
	c.mu.Unlock()
	c.api.SetSession("", "")

	if resp, err := c.api.Connect(ctx); err != nil {
		log.Printf("WARN: anonymous reconnect failed: %v", err)
	} else {
		c.store(*resp)
	}

	c.fireLogout()
}

func (c *Client) store(resp drupal.ConnectResponse) {
	c.mu.Lock()
	c.current = domain.Session{
		SessionID:   resp.SessionID,
		SessionName: resp.SessionName,
		User:        resp.User,
	}
	c.mu.Unlock()
	c.api.SetSession(resp.SessionName, resp.SessionID)
}

func (c *Client) fireLogin(user domain.User) {
	c.mu.Lock()
	handlers := make([]LoginHandler, len(c.loginHandlers))
	copy(handlers, c.loginHandlers)
	c.mu.Unlock()
	for _, fn := range handlers {
		fn(user)
	}
}

func (c *Client) fireLogout() {
	c.mu.Lock()
	handlers := make([]LogoutHandler, len(c.logoutHandlers))
	copy(handlers, c.logoutHandlers)
	c.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}
