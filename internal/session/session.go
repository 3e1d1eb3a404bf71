// Package session hosts many independent games behind one lock each and
// fans their outcomes out to storage and live subscribers.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/darkhollow/internal/engine"
	"github.com/talgya/darkhollow/internal/persistence"
)

// Update is one outcome pushed to subscribers.
type Update struct {
	SessionID string         `json:"session_id"`
	Outcome   engine.Outcome `json:"outcome"`
	Error     string         `json:"error,omitempty"`
	Screen    string         `json:"screen"`
	Time      uint64         `json:"time"`
}

// Session is one game plus its metadata. All game access goes through the
// session mutex.
type Session struct {
	ID      string
	Name    string
	Seed    *int64
	Created time.Time

	mu    sync.Mutex
	game  *engine.Game
	store Store

	subMu sync.Mutex
	subs  map[chan Update]struct{}
}

func newSession(id, name string, seed *int64, g *engine.Game, store Store) *Session {
	return &Session{
		ID:      id,
		Name:    name,
		Seed:    seed,
		Created: time.Now(),
		game:    g,
		store:   store,
		subs:    make(map[chan Update]struct{}),
	}
}

// Exec dispatches one player command.
func (s *Session) Exec(cmd engine.Command) (engine.Outcome, engine.Snapshot) {
	s.mu.Lock()
	o := s.game.Dispatch(cmd)
	snap := s.game.Snapshot()
	s.mu.Unlock()

	s.emit(o, snap)
	return o, snap
}

// Tick advances the game clock by one step.
func (s *Session) Tick() engine.Outcome {
	s.mu.Lock()
	o := s.game.Tick()
	snap := s.game.Snapshot()
	s.mu.Unlock()

	if len(o.Lines) > 0 {
		s.emit(o, snap)
	}
	return o
}

// RandomEvent rolls one random event. Nothing is emitted when none applies.
func (s *Session) RandomEvent() engine.Outcome {
	s.mu.Lock()
	o := s.game.RandomEvent()
	snap := s.game.Snapshot()
	s.mu.Unlock()

	if len(o.Lines) > 0 {
		s.emit(o, snap)
	}
	return o
}

// Snapshot returns the current read-only view.
func (s *Session) Snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// Variant returns the name of the session's variant.
func (s *Session) Variant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Variant().Name
}

func (s *Session) saved() persistence.SavedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persistence.SavedSession{
		ID:      s.ID,
		Name:    s.Name,
		Variant: s.game.Variant().Name,
		Seed:    s.Seed,
		State:   s.game.State(),
	}
}

// replace swaps in a game rebuilt from storage.
func (s *Session) replace(g *engine.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = g
}

// Subscribe registers a listener for outcomes. The returned func
// unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 32)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) emit(o engine.Outcome, snap engine.Snapshot) {
	t := snap.State.Time
	if s.store != nil && len(o.Lines) > 0 {
		if err := s.store.AppendNarration(s.ID, t, o.Lines); err != nil {
			slog.Error("narration append failed", "session", s.ID, "error", err)
		}
	}

	u := Update{SessionID: s.ID, Outcome: o, Error: o.Reason(), Screen: snap.Screen, Time: t}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- u:
		default:
			slog.Warn("subscriber too slow, dropping update", "session", s.ID)
		}
	}
}
