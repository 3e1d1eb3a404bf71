package engine

import "fmt"

// Start opens the game.
func (g *Game) Start() Outcome {
	s := g.state
	if s.Stage > 0 {
		return g.fail(CmdStart, fmt.Errorf("%w: the game has already begun", ErrUnavailable))
	}
	s.Stage = 1
	return g.done(CmdStart,
		`A whisper echoes: "Find the light within the darkness."`,
		"You find yourself alone, the darkness is overwhelming.",
	)
}

// Restart wipes a completed game and begins again under the same sky.
func (g *Game) Restart() Outcome {
	if !g.state.Flags[FlagGameCompleted] {
		return g.fail(CmdRestart, fmt.Errorf("%w: the darkness still holds", ErrUnavailable))
	}
	seed := g.state.WeatherSeed
	g.state = NewState()
	g.state.WeatherSeed = seed
	o := g.Start()
	o.Command = CmdRestart
	return o
}

// FinalBattleChance is the probability of winning the final battle with the
// items currently owned.
func (g *Game) FinalBattleChance() float64 {
	inv := g.state.Inventory
	chance := baseBattleChance
	for _, b := range battleBonuses {
		owned := inv.Artifacts
		if b.category == "weapons" {
			owned = inv.Weapons
		}
		if owned[b.item] > 0 {
			chance += b.bonus
		}
	}
	return min(max(chance, 0), 1)
}

func (g *Game) progressStory() []string {
	s := g.state
	if s.Flags[FlagGameCompleted] || s.Flags[FlagFinalBattleTriggered] {
		return nil
	}
	if s.Inventory.Artifacts[LostRelic] == 0 || !s.Flags[FlagLearnedMagic] {
		return nil
	}
	s.Flags[FlagFinalBattleTriggered] = true
	lines := []string{"With the Lost Relic and your mastery of magic, you confront the source of darkness."}
	return append(lines, g.finalBattle()...)
}

func (g *Game) finalBattle() []string {
	s := g.state
	lines := []string{"An epic battle ensues..."}
	if g.rng.Float64() < g.FinalBattleChance() {
		s.Flags[FlagGameCompleted] = true
		s.CurrentScreen = ScreenNone
		return append(lines, "You have vanquished the darkness and restored light to the world!")
	}
	s.Flags[FlagFinalBattleTriggered] = false
	s.CurrentScreen = ScreenNone
	return append(lines, "You were defeated by the darkness. Gather more resources and try again.")
}
