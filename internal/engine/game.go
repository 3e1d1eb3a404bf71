package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/talgya/darkhollow/internal/entropy"
	"github.com/talgya/darkhollow/internal/weather"
)

// Outcome is what a command reports back: narration plus, on failure, an
// error wrapping one of the package's failure sentinels.
type Outcome struct {
	Command CommandName `json:"command"`
	Lines   []string    `json:"lines"`
	Err     error       `json:"-"`
}

// OK reports whether the command succeeded. A zero-worker no-op counts as
// success; its Err still matches ErrNoWorkers.
func (o Outcome) OK() bool { return o.Err == nil || errors.Is(o.Err, ErrNoWorkers) }

// Reason is the failure text, or "" on success.
func (o Outcome) Reason() string {
	if o.OK() {
		return ""
	}
	return o.Err.Error()
}

// Game is one player's session core. It is not safe for concurrent use;
// callers serialize access per game.
type Game struct {
	state   *GameState
	rng     entropy.Source
	variant Variant
	sky     *weather.Generator
	log     []string
}

// New starts a fresh game. weatherSeed fixes the sky for the whole run.
func New(v Variant, rng entropy.Source, weatherSeed int64) *Game {
	s := NewState()
	s.WeatherSeed = weatherSeed
	return &Game{
		state:   s,
		rng:     rng,
		variant: v,
		sky:     weather.NewGenerator(weatherSeed),
	}
}

// Resume rebuilds a game around a previously saved state.
func Resume(v Variant, rng entropy.Source, s *GameState) (*Game, error) {
	g := &Game{rng: rng, variant: v}
	if err := g.Restore(s); err != nil {
		return nil, err
	}
	return g, nil
}

// Restore replaces the current state with a validated copy of s.
func (g *Game) Restore(s *GameState) error {
	if s == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidState)
	}
	c := s.Clone()
	c.normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	g.state = c
	g.sky = weather.NewGenerator(c.WeatherSeed)
	return nil
}

// State returns a deep copy of the current state for persistence.
func (g *Game) State() *GameState { return g.state.Clone() }

// Variant returns the game's variant.
func (g *Game) Variant() Variant { return g.variant }

// Log returns the retained narration, oldest first.
func (g *Game) Log() []string { return append([]string{}, g.log...) }

// Tick advances game time by one step and, at the root menu, checks
// whether the story has reached its climax.
func (g *Game) Tick() Outcome {
	s := g.state
	s.Time++

	var lines []string
	if sky := g.sky.At(s.Time); sky.Description != s.Weather {
		if s.Weather != "" {
			lines = append(lines, fmt.Sprintf("The weather turns: %s.", sky.Description))
		}
		s.Weather = sky.Description
	}

	if s.CurrentScreen == ScreenNone {
		lines = append(lines, g.progressStory()...)
	}
	return g.done(CmdTick, lines...)
}

func (g *Game) done(cmd CommandName, lines ...string) Outcome {
	return g.record(Outcome{Command: cmd, Lines: lines})
}

func (g *Game) fail(cmd CommandName, err error, lines ...string) Outcome {
	if len(lines) == 0 {
		lines = []string{capitalize(err.Error()) + "."}
	}
	return g.record(Outcome{Command: cmd, Lines: lines, Err: err})
}

func (g *Game) record(o Outcome) Outcome {
	g.log = append(g.log, o.Lines...)
	if limit := g.variant.LogLimit; limit > 0 && len(g.log) > limit {
		g.log = append([]string{}, g.log[len(g.log)-limit:]...)
	}
	return o
}

func (g *Game) canAfford(c Cost) bool {
	for r, need := range c {
		if g.state.Resources[r] < need {
			return false
		}
	}
	return true
}

// shortfall describes what is missing from c, for failure narration.
func (g *Game) shortfall(c Cost) string {
	var parts []string
	for _, r := range AllResources {
		need, ok := c[r]
		if !ok {
			continue
		}
		if have := g.state.Resources[r]; have < need {
			parts = append(parts, fmt.Sprintf("%s more %s", formatAmount(need-have), r))
		}
	}
	return strings.Join(parts, ", ")
}

// spend deducts c. Callers must check canAfford first.
func (g *Game) spend(c Cost) {
	for r, v := range c {
		g.state.Resources[r] -= v
	}
}

// insufficient is the shared failure for any unaffordable cost.
func (g *Game) insufficient(cmd CommandName, what string, c Cost) Outcome {
	return g.fail(cmd,
		fmt.Errorf("%w: %s needs %s", ErrInsufficientResources, what, g.shortfall(c)),
		fmt.Sprintf("Not enough resources to %s. You need %s.", what, g.shortfall(c)),
	)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
