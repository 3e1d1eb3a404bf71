// Package api serves game sessions over HTTP.
// GET endpoints are public. Session commands are open to anyone holding a
// session id; the speed and snapshot endpoints require a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/darkhollow/internal/engine"
	"github.com/talgya/darkhollow/internal/parser"
	"github.com/talgya/darkhollow/internal/persistence"
	"github.com/talgya/darkhollow/internal/session"
)

const (
	maxStreamConns  = 64
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// NarrationStore reads persisted narration. *persistence.DB satisfies it.
type NarrationStore interface {
	RecentNarration(sessionID string, limit int) ([]persistence.Narration, error)
}

// Server exposes the session manager over HTTP.
type Server struct {
	Sessions    *session.Manager
	Clock       *engine.Clock
	Narration   NarrationStore // nil disables the log endpoint
	Parser      *parser.Parser
	Port        int
	AdminKey    string // Bearer token for admin endpoints. Empty = disabled.
	CORSOrigins []string

	started     time.Time
	streamConns int32
}

// Handler builds the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	if s.Parser == nil {
		s.Parser = parser.New()
	}
	createLimiter := NewRateLimiter(30, time.Hour)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/variants", s.handleVariants)
	mux.HandleFunc("/api/v1/sessions", s.handleSessions(createLimiter))
	mux.HandleFunc("/api/v1/session/", s.handleSessionRoutes)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving in a goroutine. The returned server can be shut down.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no DARKHOLLOW_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":     "Dark Hollow",
		"uptime":   strings.TrimSuffix(humanize.RelTime(s.started, time.Now(), "", ""), " "),
		"started":  s.started.UTC().Format(time.RFC3339),
		"sessions": s.Sessions.Count(),
		"variants": engine.VariantNames(s.Sessions.Variants()),
	}
	if s.Clock != nil {
		status["tick"] = s.Clock.Tick()
		status["speed"] = s.Clock.Speed()
		status["interval"] = s.Clock.Interval.String()
	}
	writeJSON(w, status)
}

func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	variants := s.Sessions.Variants()
	out := make([]engine.Variant, 0, len(variants))
	for _, name := range engine.VariantNames(variants) {
		out = append(out, variants[name])
	}
	writeJSON(w, out)
}

type createRequest struct {
	Name    string `json:"name"`
	Variant string `json:"variant"`
	Seed    *int64 `json:"seed,omitempty"`
}

// handleSessions lists sessions on GET and creates one on POST.
func (s *Server) handleSessions(limiter *RateLimiter) http.HandlerFunc {
	create := RateLimitMiddleware(limiter, s.handleCreate)
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, s.Sessions.List())
		case http.MethodPost:
			create(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	sess, err := s.Sessions.Create(req.Name, req.Variant, req.Seed)
	if errors.Is(err, session.ErrUnknownVariant) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("create session failed", "error", err)
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Location", "/api/v1/session/"+sess.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{
		"id":       sess.ID,
		"name":     sess.Name,
		"snapshot": sess.Snapshot(),
	})
}

// handleSessionRoutes dispatches /api/v1/session/{id}[/action].
func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/session/"), "/")
	id, action, _ := strings.Cut(path, "/")
	if id == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	// Load and delete also reach sessions that are only in storage.
	if action == "load" {
		s.handleLoad(w, r, id)
		return
	}
	if action == "" && r.Method == http.MethodDelete {
		s.handleDelete(w, id)
		return
	}

	sess, ok := s.Sessions.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, sess.Snapshot())
	case "command":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleCommand(w, r, sess)
	case "save":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleSave(w, sess)
	case "log":
		s.handleLog(w, r, sess)
	case "stream":
		s.handleStream(w, r, sess)
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
	}
}

type commandRequest struct {
	Command string `json:"command"`
	Arg     string `json:"arg"`
	Text    string `json:"text"`
}

type commandResponse struct {
	OK       bool            `json:"ok"`
	Parsed   string          `json:"parsed,omitempty"`
	Outcome  *engine.Outcome `json:"outcome,omitempty"`
	Error    string          `json:"error,omitempty"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

// handleCommand runs a structured command or parses free text into one.
// Game-level failures are still 200; the outcome carries the reason.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var cmd engine.Command
	switch {
	case req.Command != "":
		cmd = engine.Command{Name: engine.CommandName(strings.TrimSpace(req.Command)), Arg: req.Arg}
	case strings.TrimSpace(req.Text) != "":
		intent := s.Parser.Parse(parser.ContextFrom(sess.Snapshot()), req.Text)
		if intent.Clarify != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			writeJSON(w, map[string]any{
				"error":       intent.Clarify.Prompt,
				"suggestions": intent.Clarify.Options,
			})
			return
		}
		if intent.Kind == parser.Meta {
			s.handleMeta(w, sess, intent.Meta)
			return
		}
		cmd = intent.Command
	default:
		http.Error(w, "command or text required", http.StatusBadRequest)
		return
	}

	o, snap := sess.Exec(cmd)
	writeJSON(w, commandResponse{
		OK:       o.OK(),
		Parsed:   strings.TrimSpace(string(cmd.Name) + " " + cmd.Arg),
		Outcome:  &o,
		Error:    o.Reason(),
		Snapshot: snap,
	})
}

// handleMeta answers the parser's meta verbs for an HTTP client.
func (s *Server) handleMeta(w http.ResponseWriter, sess *session.Session, verb string) {
	switch verb {
	case parser.MetaSave:
		s.handleSave(w, sess)
	case parser.MetaLoad:
		loaded, err := s.Sessions.Load(sess.ID)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, commandResponse{OK: true, Parsed: verb, Snapshot: loaded.Snapshot()})
	default:
		writeJSON(w, commandResponse{OK: true, Parsed: verb, Snapshot: sess.Snapshot()})
	}
}

func (s *Server) handleSave(w http.ResponseWriter, sess *session.Session) {
	if err := s.Sessions.Save(sess.ID); err != nil {
		writeSessionError(w, err)
		return
	}
	snap := sess.Snapshot()
	writeJSON(w, map[string]any{
		"id":      sess.ID,
		"time":    snap.State.Time,
		"message": "session saved",
	})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, err := s.Sessions.Load(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, sess.Snapshot())
}

func (s *Server) handleDelete(w http.ResponseWriter, id string) {
	if err := s.Sessions.Delete(id); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if s.Narration == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLogLimit)
	}

	lines, err := s.Narration.RecentNarration(sess.ID, limit)
	if err != nil {
		slog.Error("narration read failed", "session", sess.ID, "error", err)
		http.Error(w, "log read failed", http.StatusInternalServerError)
		return
	}
	if lines == nil {
		lines = []persistence.Narration{}
	}
	writeJSON(w, lines)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Clock == nil {
		http.Error(w, "clock not running", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Clock.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Clock.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.Sessions.SaveAll(); err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"sessions": s.Sessions.Count(),
		"message":  "snapshot saved",
	})
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, session.ErrNoStore):
		http.Error(w, "database not available", http.StatusServiceUnavailable)
	default:
		slog.Error("session operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
