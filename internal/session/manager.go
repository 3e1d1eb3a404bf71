package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/darkhollow/internal/engine"
	"github.com/talgya/darkhollow/internal/entropy"
	"github.com/talgya/darkhollow/internal/persistence"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrUnknownVariant = errors.New("unknown variant")
	ErrNoStore        = errors.New("no storage configured")
)

// Store is the persistence the manager needs. *persistence.DB satisfies it.
type Store interface {
	SaveSession(s persistence.SavedSession) error
	SaveSessions(list []persistence.SavedSession) error
	LoadSession(id string) (persistence.SavedSession, error)
	ListSessions() ([]persistence.SessionSummary, error)
	DeleteSession(id string) error
	AppendNarration(sessionID string, t uint64, lines []string) error
}

// Summary describes a live session for listings.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Variant   string    `json:"variant"`
	Seeded    bool      `json:"seeded"`
	Screen    string    `json:"screen"`
	Time      uint64    `json:"time"`
	Completed bool      `json:"completed"`
	Created   time.Time `json:"created"`
}

// Manager owns every live session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	variants map[string]engine.Variant
	store    Store           // nil disables saving
	live     *entropy.Client // nil without a random.org key
}

// NewManager creates an empty manager. store and live may be nil.
func NewManager(variants map[string]engine.Variant, store Store, live *entropy.Client) *Manager {
	if len(variants) == 0 {
		variants = engine.BuiltinVariants()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		variants: variants,
		store:    store,
		live:     live,
	}
}

// Variants returns the configured variants.
func (m *Manager) Variants() map[string]engine.Variant { return m.variants }

// Create starts a new game. An empty variant means the default; a nil seed
// means live entropy.
func (m *Manager) Create(name, variant string, seed *int64) (*Session, error) {
	if variant == "" {
		variant = engine.DefaultVariant
	}
	v, ok := m.variants[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	id := uuid.NewString()
	if name == "" {
		name = "Wanderer " + id[:8]
	}

	weatherSeed := time.Now().UnixNano()
	if seed != nil {
		weatherSeed = *seed
	}
	g := engine.New(v, entropy.ForSession(seed, m.live), weatherSeed)
	s := newSession(id, name, seed, g, m.store)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	slog.Info("session created", "id", id, "name", name, "variant", variant, "seeded", seed != nil)
	return s, nil
}

// Get looks up a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) all() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// List summarizes the live sessions, oldest first.
func (m *Manager) List() []Summary {
	sessions := m.all()
	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		snap := s.Snapshot()
		out = append(out, Summary{
			ID:        s.ID,
			Name:      s.Name,
			Variant:   snap.Variant,
			Seeded:    s.Seed != nil,
			Screen:    snap.Screen,
			Time:      snap.State.Time,
			Completed: snap.State.Flags[engine.FlagGameCompleted],
			Created:   s.Created,
		})
	}
	return out
}

// Delete drops a session from memory and storage.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.store != nil {
		err := m.store.DeleteSession(id)
		if err != nil && !errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
		if err == nil {
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	slog.Info("session deleted", "id", id)
	return nil
}

// TickAll advances every live session by one tick.
func (m *Manager) TickAll() {
	for _, s := range m.all() {
		s.Tick()
	}
}

// RandomEventAll rolls one random event in every live session.
func (m *Manager) RandomEventAll() {
	fired := 0
	for _, s := range m.all() {
		if o := s.RandomEvent(); o.OK() {
			fired++
		}
	}
	if fired > 0 {
		slog.Debug("random events fired", "sessions", fired)
	}
}

// Save persists one session.
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return ErrNoStore
	}
	s, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := m.store.SaveSession(s.saved()); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// SaveAll persists every live session in one batch.
func (m *Manager) SaveAll() error {
	if m.store == nil {
		return ErrNoStore
	}
	sessions := m.all()
	list := make([]persistence.SavedSession, 0, len(sessions))
	for _, s := range sessions {
		list = append(list, s.saved())
	}
	return m.store.SaveSessions(list)
}

// Load replaces a session's game with its stored state, bringing the
// session into memory if it is not live.
func (m *Manager) Load(id string) (*Session, error) {
	if m.store == nil {
		return nil, ErrNoStore
	}
	saved, err := m.store.LoadSession(id)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if s, ok := m.Get(id); ok {
		g, err := m.rebuild(saved)
		if err != nil {
			return nil, err
		}
		s.replace(g)
		slog.Info("session reloaded", "id", id, "time", saved.State.Time)
		return s, nil
	}

	s, err := m.resume(saved)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	slog.Info("session loaded", "id", id, "time", saved.State.Time)
	return s, nil
}

// rebuild makes a game from a save. A seeded stream restarts at an offset
// of the saved game time so a reload does not replay old draws.
func (m *Manager) rebuild(saved persistence.SavedSession) (*engine.Game, error) {
	v, ok := m.variants[saved.Variant]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, saved.Variant)
	}
	seed := entropy.ResumeSeed(saved.Seed, saved.State.Time)
	g, err := engine.Resume(v, entropy.ForSession(seed, m.live), saved.State)
	if err != nil {
		return nil, fmt.Errorf("resume session %s: %w", saved.ID, err)
	}
	return g, nil
}

// resume brings a stored session into memory.
func (m *Manager) resume(saved persistence.SavedSession) (*Session, error) {
	g, err := m.rebuild(saved)
	if err != nil {
		return nil, err
	}
	s := newSession(saved.ID, saved.Name, saved.Seed, g, m.store)
	if !saved.UpdatedAt.IsZero() {
		s.Created = saved.UpdatedAt
	}
	return s, nil
}

// RestoreAll brings every stored session into memory. Sessions that fail
// to load are logged and skipped.
func (m *Manager) RestoreAll() (int, error) {
	if m.store == nil {
		return 0, ErrNoStore
	}
	list, err := m.store.ListSessions()
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	n := 0
	for _, sum := range list {
		if _, err := m.Load(sum.ID); err != nil {
			slog.Error("skipping stored session", "id", sum.ID, "error", err)
			continue
		}
		n++
	}
	return n, nil
}
