package engine

import "fmt"

// Explore scouts a random location and waits for the player to enter it.
func (g *Game) Explore() Outcome {
	s := g.state
	loc := Locations[g.rng.IntN(len(Locations))]
	s.Location = loc
	s.CurrentScreen = ScreenExplore
	return g.done(CmdExplore, fmt.Sprintf("You explore and find the %s.", loc))
}

// EnterLocation applies the scouted location's effect and returns home.
func (g *Game) EnterLocation() Outcome {
	s := g.state
	effect, ok := locationEffects[s.Location]
	if !ok {
		return g.fail(CmdEnter, fmt.Errorf("%w: nowhere to enter", ErrNoApplicableTarget))
	}
	loc := s.Location
	line := effect(s)
	s.Location = ""
	s.CurrentScreen = ScreenNone
	return g.done(CmdEnter, fmt.Sprintf("You enter the %s.", loc), line)
}

// ResearchMagic studies the arts revealed at the shrine.
func (g *Game) ResearchMagic() Outcome {
	s := g.state
	if s.Flags[FlagLearnedMagic] {
		return g.fail(CmdResearchMagic, fmt.Errorf("%w: magic already mastered", ErrUnavailable),
			"You have already mastered magic.")
	}
	if !s.Flags[FlagMagicUnlocked] {
		return g.fail(CmdResearchMagic, fmt.Errorf("%w: nobody knows where to begin", ErrUnavailable))
	}
	if !g.canAfford(magicCost) {
		return g.insufficient(CmdResearchMagic, "research magic", magicCost)
	}
	g.spend(magicCost)
	s.Flags[FlagLearnedMagic] = true
	return g.done(CmdResearchMagic, "You have unlocked the secrets of magic.")
}
