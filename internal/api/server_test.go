package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/darkhollow/internal/engine"
	"github.com/talgya/darkhollow/internal/persistence"
	"github.com/talgya/darkhollow/internal/session"
)

type fixture struct {
	srv  *Server
	http *httptest.Server
	db   *persistence.DB
}

func newFixture(t *testing.T, withDB bool) *fixture {
	t.Helper()
	f := &fixture{}
	var store session.Store
	if withDB {
		db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		f.db = db
		store = db
	}
	f.srv = &Server{
		Sessions: session.NewManager(nil, store, nil),
		Clock:    engine.NewClock(time.Second),
		AdminKey: "secret",
	}
	if f.db != nil {
		f.srv.Narration = f.db
	}
	f.http = httptest.NewServer(f.srv.Handler())
	t.Cleanup(f.http.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, header ...string) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.http.URL+path, rd)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func (f *fixture) create(t *testing.T) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{"name": "Ash", "seed": 4})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestStatusAndVariants(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Dark Hollow", body["name"])
	assert.EqualValues(t, 0, body["sessions"])
	assert.NotEmpty(t, body["uptime"])

	resp, err := http.Get(f.http.URL + "/api/v1/variants")
	require.NoError(t, err)
	defer resp.Body.Close()
	var variants []engine.Variant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&variants))
	require.Len(t, variants, 3)
	assert.Equal(t, "classic", variants[0].Name)
}

func TestCreateAndCommand(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t)

	resp, body := f.do(t, http.MethodGet, "/api/v1/session/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "homestead", body["variant"])

	resp, body = f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{"command": "start"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, body = f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{"text": "gather wood"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gather_wood", body["parsed"])
	snap := body["snapshot"].(map[string]any)
	res := snap["state"].(map[string]any)["resources"].(map[string]any)
	assert.EqualValues(t, 1, res["wood"])
}

func TestGameFailureIsStillOK(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t)

	resp, body := f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{"command": "hunt"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestCommandErrors(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t)

	resp, _ := f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/session/nope/command", map[string]string{"command": "start"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{"text": "xyzzy plugh"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, body["suggestions"])

	resp, _ = f.do(t, http.MethodGet, "/api/v1/session/"+id+"/command", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestUnknownVariantRejected(t *testing.T) {
	f := newFixture(t, false)
	resp, _ := f.do(t, http.MethodPost, "/api/v1/sessions", map[string]string{"variant": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveLoadLogAndDelete(t *testing.T) {
	f := newFixture(t, true)
	id := f.create(t)

	f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{"command": "start"})
	f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{"command": "gather_wood"})

	resp, body := f.do(t, http.MethodPost, "/api/v1/session/"+id+"/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "session saved", body["message"])

	f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{"command": "gather_wood"})

	resp, body = f.do(t, http.MethodPost, "/api/v1/session/"+id+"/load", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := body["state"].(map[string]any)["resources"].(map[string]any)
	assert.EqualValues(t, 1, res["wood"])

	logResp, err := http.Get(f.http.URL + "/api/v1/session/" + id + "/log?limit=2")
	require.NoError(t, err)
	defer logResp.Body.Close()
	var lines []persistence.Narration
	require.NoError(t, json.NewDecoder(logResp.Body).Decode(&lines))
	assert.Len(t, lines, 2)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/session/"+id+"/log?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/v1/session/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/api/v1/session/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = f.do(t, http.MethodDelete, "/api/v1/session/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveWithoutStore(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t)
	resp, _ := f.do(t, http.MethodPost, "/api/v1/session/"+id+"/save", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/api/v1/session/"+id+"/log", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	f := newFixture(t, true)
	f.create(t)

	resp, _ := f.do(t, http.MethodPost, "/api/v1/speed", map[string]float64{"speed": 4})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/v1/speed", map[string]float64{"speed": 4}, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4, body["speed"])
	assert.Equal(t, 4.0, f.srv.Clock.Speed())

	resp, _ = f.do(t, http.MethodPost, "/api/v1/speed", map[string]float64{"speed": -1}, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/v1/snapshot", nil, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["sessions"])

	list, err := f.db.ListSessions()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	f.srv.AdminKey = ""
	resp, _ = f.do(t, http.MethodPost, "/api/v1/snapshot", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, false)
	resp, _ := f.do(t, http.MethodOptions, "/api/v1/status", nil, "Origin", "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = f.do(t, http.MethodGet, "/api/v1/status", nil, "Origin", "http://evil.example")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStreamPushesOutcomes(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t)

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/api/v1/session/" + id + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "snapshot", hello["type"])

	f.do(t, http.MethodPost, "/api/v1/session/"+id+"/command", map[string]string{"command": "start"})

	var msg struct {
		Type   string         `json:"type"`
		Update session.Update `json:"update"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "outcome", msg.Type)
	assert.Equal(t, id, msg.Update.SessionID)
	assert.Equal(t, engine.CmdStart, msg.Update.Outcome.Command)
}
