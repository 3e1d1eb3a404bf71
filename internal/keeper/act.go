package keeper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/darkhollow/internal/engine"
)

// CommandResult is the response from POST /api/v1/session/{id}/command.
type CommandResult struct {
	OK       bool            `json:"ok"`
	Parsed   string          `json:"parsed"`
	Outcome  *engine.Outcome `json:"outcome"`
	Error    string          `json:"error"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

// Actor sends commands through the session API.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateSession starts a new game and returns its id.
func (a *Actor) CreateSession(name, variant string, seed *int64) (string, error) {
	req := map[string]any{"name": name, "variant": variant}
	if seed != nil {
		req["seed"] = *seed
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := a.post("/api/v1/sessions", req, http.StatusCreated, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("create session: empty id")
	}
	return created.ID, nil
}

// Act sends one command. A game-level failure is not an error; it comes
// back with OK false.
func (a *Actor) Act(sessionID string, cmd engine.Command) (*CommandResult, error) {
	body := map[string]string{"command": string(cmd.Name), "arg": cmd.Arg}
	var result CommandResult
	if err := a.post("/api/v1/session/"+sessionID+"/command", body, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Save asks the server to persist the session.
func (a *Actor) Save(sessionID string) error {
	return a.post("/api/v1/session/"+sessionID+"/save", nil, http.StatusOK, nil)
}

func (a *Actor) post(path string, payload any, want int, target any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, string(respBody))
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
