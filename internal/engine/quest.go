package engine

import "fmt"

// Quest odds.
const (
	ruinsFindChance   = 0.3
	forestFightChance = 0.5
	questReward       = 50
)

// ContinueQuest opens the quest menu while the relic hunt is active.
func (g *Game) ContinueQuest() Outcome {
	s := g.state
	if !s.HasQuest(RelicQuest) {
		return g.fail(CmdContinueQuest, fmt.Errorf("%w: no active quest", ErrUnavailable))
	}
	s.CurrentScreen = ScreenQuest
	return g.done(CmdContinueQuest, "You embark on a journey to find the Lost Relic.")
}

// SearchRuins looks for the relic among the ruins.
func (g *Game) SearchRuins() Outcome {
	s := g.state
	if g.rng.Float64() >= ruinsFindChance {
		return g.done(CmdSearchRuins, "The ruins were empty.")
	}
	s.Inventory.Artifacts[LostRelic] = 1
	lines := []string{"You found the Lost Relic in the ruins!"}
	lines = append(lines, g.completeQuest(RelicQuest)...)
	s.CurrentScreen = ScreenNone
	return g.done(CmdSearchRuins, lines...)
}

// VentureForest risks an ambush in the dark forest.
func (g *Game) VentureForest() Outcome {
	if g.rng.Float64() >= forestFightChance {
		return g.done(CmdVentureForest, "You found a hidden path but no relic.")
	}
	lines := []string{"You were ambushed by bandits!"}
	lines = append(lines, g.startCombat(ScreenQuest)...)
	return g.done(CmdVentureForest, lines...)
}

func (g *Game) completeQuest(name string) []string {
	s := g.state
	s.removeQuest(name)
	s.Resources[Gold] += questReward
	return []string{
		fmt.Sprintf("Quest Completed: %s", name),
		fmt.Sprintf("You earned %d gold.", questReward),
	}
}
