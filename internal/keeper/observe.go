// Package keeper plays a Dark Hollow session through the HTTP API.
// It observes the session snapshot, picks the next command with fixed
// rules and posts it back.
package keeper

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/darkhollow/internal/engine"
)

// Status mirrors GET /api/v1/status.
type Status struct {
	Name     string  `json:"name"`
	Uptime   string  `json:"uptime"`
	Sessions int     `json:"sessions"`
	Tick     uint64  `json:"tick"`
	Speed    float64 `json:"speed"`
}

// Observer fetches session state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Status fetches the server status.
func (o *Observer) Status() (*Status, error) {
	var st Status
	if err := o.fetchJSON("/api/v1/status", &st); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	return &st, nil
}

// Observe fetches the current snapshot of one session.
func (o *Observer) Observe(sessionID string) (*engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := o.fetchJSON("/api/v1/session/"+sessionID, &snap); err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if snap.State == nil {
		return nil, fmt.Errorf("session %s returned no state", sessionID)
	}
	return &snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
