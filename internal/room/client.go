// Package room is the client-side bootstrap for a collaborative room
// view: it loads the user directory, answers the realtime provider's
// resolution callbacks, and fetches room credentials from the
// authorization endpoint.
package room

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// User is one directory entry.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
}

// RoomInfo labels a room for dashboards.
type RoomInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client talks to the scribe API on behalf of a signed-in user.
type Client struct {
	baseURL      string
	sessionToken string
	http         *http.Client
}

func NewClient(baseURL, sessionToken string) *Client {
	return &Client{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		http:         &http.Client{Timeout: 15 * time.Second},
	}
}

// GetUsers fetches the full user directory.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Users []User `json:"users"`
	}
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

// GetDocuments resolves room ids to names.
func (c *Client) GetDocuments(ctx context.Context, ids []string) ([]RoomInfo, error) {
	body, err := json.Marshal(map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/info", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Documents []RoomInfo `json:"documents"`
	}
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return payload.Documents, nil
}

// Authorize requests a room credential from the authorization endpoint and
// returns the opaque body the transport consumes.
func (c *Client) Authorize(ctx context.Context, roomID string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"room": roomID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/realtime/auth", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.sessionToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("room authorization failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) do(req *http.Request, target any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.sessionToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", req.URL.Path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
