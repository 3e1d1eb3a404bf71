package engine

import (
	"encoding/json"
	"testing"
)

// scripted replays fixed draws so tests can force each random branch.
type scripted struct {
	floats []float64
	ints   []int
}

func (s *scripted) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func (s *scripted) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		panic("scripted int out of range")
	}
	return v
}

func newTestGame(t *testing.T, src *scripted) *Game {
	t.Helper()
	if src == nil {
		src = &scripted{}
	}
	return New(BuiltinVariants()[DefaultVariant], src, 1)
}

// withShelters builds n shelters for free and leaves their workers idle.
func withShelters(t *testing.T, g *Game, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		cost := ShelterCost(g.state.Buildings.Shelters)
		g.state.Resources[Wood] += cost[Wood]
		g.state.Resources[Stone] += cost[Stone]
		if o := g.BuildShelter(); !o.OK() {
			t.Fatalf("build shelter %d: %v", i, o.Err)
		}
	}
}

func copyResources(s *GameState) map[Resource]float64 {
	out := make(map[Resource]float64, len(s.Resources))
	for k, v := range s.Resources {
		out[k] = v
	}
	return out
}

func sameResources(a, b map[Resource]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func checkInvariants(t *testing.T, g *Game) {
	t.Helper()
	if err := g.state.Validate(); err != nil {
		t.Fatalf("invariant broken: %v", err)
	}
}

func snapshotJSON(t *testing.T, g *Game) string {
	t.Helper()
	raw, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return string(raw)
}

func assertEvents(t *testing.T, g *Game, want ...EventKind) {
	t.Helper()
	got := g.ApplicableEvents()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}
